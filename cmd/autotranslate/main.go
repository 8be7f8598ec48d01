package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	autotranslate "github.com/goliatone/go-autotranslate"
)

var moduleBuilder = func(ctx context.Context, cfg autotranslate.Config) (*autotranslate.Module, error) {
	return autotranslate.Open(ctx, cfg)
}

var errUsage = errors.New("usage: autotranslate <collect|translate|source-modified> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("autotranslate: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	mode := args[0]

	fs := flag.NewFlagSet("autotranslate "+mode, flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "Path to a TOML configuration file")
	envFile := fs.String("env-file", ".env", "Optional .env file loaded before the environment")
	rootType := fs.String("root-type", "course", "Source type of the hierarchy root")
	rootID := fs.Int64("root-id", 0, "Identifier of the hierarchy root")
	target := fs.String("target", "", "Target language code")
	source := fs.String("source", "", "Source language code (defaults to the configured one)")
	fields := fs.String("fields", "", "Comma separated sourceType:itemID:field references")
	staleOnly := fs.Bool("stale-only", false, "Only translate fields whose translation is stale")
	dryRun := fs.Bool("dry-run", false, "Translate without writing results")
	sourceType := fs.String("source-type", "", "Source type of the edited field (source-modified)")
	itemID := fs.Int64("item-id", 0, "Item identifier of the edited field (source-modified)")
	field := fs.String("field", "", "Column name of the edited field (source-modified)")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := autotranslate.LoadConfig(*configPath, *envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	module, err := moduleBuilder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	switch mode {
	case "collect":
		collected, err := module.Collect(ctx, *rootType, *rootID, *target)
		if err != nil {
			return fmt.Errorf("collect: %w", err)
		}
		return printFields(out, collected)
	case "translate":
		if err := module.Container().ProviderError(); err != nil && !*dryRun {
			return fmt.Errorf("translation provider unavailable: %w", err)
		}
		msg := autotranslate.TranslateFieldsCommand{
			RootType:       *rootType,
			RootID:         *rootID,
			SourceLanguage: *source,
			TargetLanguage: *target,
			Fields:         splitList(*fields),
			StaleOnly:      *staleOnly,
			DryRun:         *dryRun,
		}
		if err := module.TranslateFields(ctx, msg); err != nil {
			return fmt.Errorf("translate: %w", err)
		}
		fmt.Fprintln(out, "translate command executed successfully")
		return nil
	case "source-modified":
		if err := module.MarkSourceModified(ctx, *sourceType, *itemID, *field); err != nil {
			return fmt.Errorf("source-modified: %w", err)
		}
		fmt.Fprintln(out, "source-modified command executed successfully")
		return nil
	default:
		return fmt.Errorf("%w: unknown mode %q", errUsage, mode)
	}
}

func printFields(out io.Writer, fields []autotranslate.Field) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tFORMAT\tSTATUS\tTEXT")
	for _, f := range fields {
		status := "-"
		if f.Status != nil && f.Status.Ready() {
			status = "fresh"
			if f.NeedsUpdate() {
				status = "stale"
			}
		}
		fmt.Fprintf(tw, "%s%s:%d:%s\t%s\t%s\t%s\n",
			strings.Repeat("  ", max(f.Depth-1, 0)),
			f.Key.SourceType, f.Key.ItemID, f.Key.FieldName,
			f.Format, status, preview(f.Raw, 60))
	}
	return tw.Flush()
}

func preview(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
