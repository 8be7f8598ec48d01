package hostmodel

import (
	"errors"
	"strings"
)

// ErrLayoutInvalid is returned by Layout.Validate.
var ErrLayoutInvalid = errors.New("hostmodel: layout invalid")

// Layout names the tables and columns that shape the content hierarchy.
type Layout struct {
	TablePrefix string `toml:"table_prefix" json:"table_prefix"`

	ContainerTable        string `toml:"container_table" json:"container_table"`
	ContainerParentColumn string `toml:"container_parent_column" json:"container_parent_column"`
	ContainerOrderColumn  string `toml:"container_order_column" json:"container_order_column"`
	// SequenceColumn holds a comma separated list of leaf ids giving their
	// order inside a container. Leaves missing from it follow in id order.
	SequenceColumn string `toml:"sequence_column" json:"sequence_column"`

	LeafTable           string `toml:"leaf_table" json:"leaf_table"`
	LeafContainerColumn string `toml:"leaf_container_column" json:"leaf_container_column"`
	LeafModuleColumn    string `toml:"leaf_module_column" json:"leaf_module_column"`
	LeafInstanceColumn  string `toml:"leaf_instance_column" json:"leaf_instance_column"`
	ModuleTable         string `toml:"module_table" json:"module_table"`
	ModuleNameColumn    string `toml:"module_name_column" json:"module_name_column"`

	SubItems map[string]SubItemSource `toml:"sub_items" json:"sub_items"`
}

// SubItemSource describes how a leaf subtype references its sub-items.
// Rows of LinkTable with LinkParentColumn = leaf id point at TargetTable rows
// through LinkRefColumn; TypeColumn on the target gives the sub-item subtype.
type SubItemSource struct {
	LinkTable        string `toml:"link_table" json:"link_table"`
	LinkParentColumn string `toml:"link_parent_column" json:"link_parent_column"`
	LinkRefColumn    string `toml:"link_ref_column" json:"link_ref_column"`
	LinkOrderColumn  string `toml:"link_order_column" json:"link_order_column"`
	TargetTable      string `toml:"target_table" json:"target_table"`
	TypeColumn       string `toml:"type_column" json:"type_column"`
}

// DefaultLayout matches a course/section/module hierarchy with quiz slots.
func DefaultLayout() Layout {
	return Layout{
		ContainerTable:        "course_sections",
		ContainerParentColumn: "course",
		ContainerOrderColumn:  "section",
		SequenceColumn:        "sequence",
		LeafTable:             "course_modules",
		LeafContainerColumn:   "section",
		LeafModuleColumn:      "module",
		LeafInstanceColumn:    "instance",
		ModuleTable:           "modules",
		ModuleNameColumn:      "name",
		SubItems: map[string]SubItemSource{
			"quiz": {
				LinkTable:        "quiz_slots",
				LinkParentColumn: "quizid",
				LinkRefColumn:    "questionid",
				LinkOrderColumn:  "slot",
				TargetTable:      "question",
				TypeColumn:       "qtype",
			},
		},
	}
}

// Validate checks the required names are present.
func (l Layout) Validate() error {
	required := map[string]string{
		"container_table":         l.ContainerTable,
		"container_parent_column": l.ContainerParentColumn,
		"leaf_table":              l.LeafTable,
		"leaf_container_column":   l.LeafContainerColumn,
		"leaf_module_column":      l.LeafModuleColumn,
		"leaf_instance_column":    l.LeafInstanceColumn,
		"module_table":            l.ModuleTable,
		"module_name_column":      l.ModuleNameColumn,
	}
	var missing []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Join(ErrLayoutInvalid, errors.New("missing "+strings.Join(sortedStrings(missing), ", ")))
	}
	return nil
}

func (l Layout) table(name string) string {
	return l.TablePrefix + name
}
