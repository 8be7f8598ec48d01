// Package hostmodel provides content model implementations over an in-memory
// store and over SQL tables through bun.
package hostmodel

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

var (
	// ErrUnknownTable is returned when a source type has no table.
	ErrUnknownTable = errors.New("hostmodel: unknown table")
	// ErrUnknownColumn is returned when writing a column the table does not declare.
	ErrUnknownColumn = errors.New("hostmodel: unknown column")
)

type nodeRef struct {
	sourceType string
	id         int64
}

func refOf(node interfaces.ContentNode) nodeRef {
	return nodeRef{sourceType: node.SourceType, id: node.ID}
}

type memoryTable struct {
	columns []interfaces.Column
	rows    map[int64]interfaces.ContentRecord
}

// Memory is a ContentModel held in maps. It is safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	tables     map[string]*memoryTable
	containers map[nodeRef][]interfaces.ContentNode
	leaves     map[nodeRef][]interfaces.ContentNode
	subItems   map[nodeRef][]interfaces.ContentNode
}

var _ interfaces.ContentModel = (*Memory)(nil)

// NewMemory returns an empty model.
func NewMemory() *Memory {
	return &Memory{
		tables:     make(map[string]*memoryTable),
		containers: make(map[nodeRef][]interfaces.ContentNode),
		leaves:     make(map[nodeRef][]interfaces.ContentNode),
		subItems:   make(map[nodeRef][]interfaces.ContentNode),
	}
}

// DefineTable declares a table and its columns in declaration order.
func (m *Memory) DefineTable(name string, columns ...interfaces.Column) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[name]
	if !ok {
		table = &memoryTable{rows: make(map[int64]interfaces.ContentRecord)}
		m.tables[name] = table
	}
	table.columns = slices.Clone(columns)
}

// Put stores a row keyed by its id column.
func (m *Memory) Put(table string, record interfaces.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	id := record.ID()
	if id == 0 {
		return fmt.Errorf("hostmodel: %s row requires an id", table)
	}
	t.rows[id] = record.Clone()
	return nil
}

// Delete removes a row.
func (m *Memory) Delete(table string, id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[table]; ok {
		delete(t.rows, id)
	}
}

// AddContainer appends child under root.
func (m *Memory) AddContainer(root, child interfaces.ContentNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.containers[refOf(root)] = append(m.containers[refOf(root)], child)
}

// AddLeaf appends leaf under container.
func (m *Memory) AddLeaf(container, leaf interfaces.ContentNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves[refOf(container)] = append(m.leaves[refOf(container)], leaf)
}

// AddSubItem appends item under leaf.
func (m *Memory) AddSubItem(leaf, item interfaces.ContentNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subItems[refOf(leaf)] = append(m.subItems[refOf(leaf)], item)
}

func (m *Memory) ListContainers(_ context.Context, root interfaces.ContentNode) ([]interfaces.ContentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.containers[refOf(root)]), nil
}

func (m *Memory) ListLeaves(_ context.Context, container interfaces.ContentNode) ([]interfaces.ContentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.leaves[refOf(container)]), nil
}

func (m *Memory) ListSubItems(_ context.Context, leaf interfaces.ContentNode) ([]interfaces.ContentNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.subItems[refOf(leaf)]), nil
}

func (m *Memory) ListRecords(_ context.Context, sourceType, parentColumn string, parentID int64) ([]interfaces.ContentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[sourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, sourceType)
	}
	var out []interfaces.ContentRecord
	for _, row := range t.rows {
		if row.Int64(parentColumn) == parentID {
			out = append(out, row.Clone())
		}
	}
	slices.SortFunc(out, func(a, b interfaces.ContentRecord) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return out, nil
}

func (m *Memory) GetColumns(_ context.Context, sourceType string) ([]interfaces.Column, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[sourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, sourceType)
	}
	return slices.Clone(t.columns), nil
}

func (m *Memory) GetRecord(_ context.Context, sourceType string, id int64) (interfaces.ContentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[sourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, sourceType)
	}
	row, ok := t.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s id=%d", interfaces.ErrRecordNotFound, sourceType, id)
	}
	return row.Clone(), nil
}

// UpdateField enforces the declared maximum length of bounded columns.
func (m *Memory) UpdateField(_ context.Context, sourceType string, id int64, column, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[sourceType]
	if !ok {
		return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Err: ErrUnknownTable}
	}
	idx := slices.IndexFunc(t.columns, func(c interfaces.Column) bool { return c.Name == column })
	if idx < 0 {
		return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Err: ErrUnknownColumn}
	}
	row, ok := t.rows[id]
	if !ok {
		return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Err: interfaces.ErrRecordNotFound}
	}
	if limit := t.columns[idx].MaxLength; limit > 0 {
		if n := utf8.RuneCountInString(value); n > limit {
			return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Actual: n, Max: limit}
		}
	}
	row[column] = value
	return nil
}
