package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/jisho/internal/config"
	"github.com/mrlokans/jisho/internal/importer"
	"github.com/mrlokans/jisho/internal/services"
)

// ImportCommand handles importing dictionary archives from the command line.
type ImportCommand struct {
	ArchivePaths    []string
	DatabasePath    string
	BatchSize       int
	PrefixWildcards bool
	Verbose         bool
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file for storing imported dictionaries")
	fs.IntVar(&cmd.BatchSize, "batch-size", 500, "Number of terms inserted per batch")
	fs.BoolVar(&cmd.PrefixWildcards, "prefix-wildcards", false, "Store reversed term forms for prefix-wildcard search")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options] <archive.zip> [<archive.zip> ...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import one or more dictionary archives into a local database.\n\n")
		fmt.Fprintf(os.Stderr, "Archives are imported in the order given. A failure in one archive\n")
		fmt.Fprintf(os.Stderr, "does not stop the remaining ones unless the database itself becomes\n")
		fmt.Fprintf(os.Stderr, "unavailable.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import a single dictionary:\n")
		fmt.Fprintf(os.Stderr, "  %s import jmdict.zip\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import several dictionaries into a specific database:\n")
		fmt.Fprintf(os.Stderr, "  %s import -db ./data/jisho.db jmdict.zip kanjidic.zip\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.ArchivePaths = fs.Args()
	if len(cmd.ArchivePaths) == 0 {
		return fmt.Errorf("no archive files provided")
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	fmt.Println("Dictionary Import")
	fmt.Println("=================")

	files := make([]services.InputFile, 0, len(cmd.ArchivePaths))
	for _, path := range cmd.ArchivePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read archive %s: %w", path, err)
		}
		files = append(files, services.InputFile{
			Name:    filepath.Base(path),
			Content: content,
		})
		if cmd.Verbose {
			fmt.Printf("  -> %s (%d bytes)\n", path, len(content))
		}
	}

	orch, db, err := openOrchestrator(cmd.DatabasePath, importer.Details{
		PrefixWildcardsSupported: cmd.PrefixWildcards,
		BatchSize:                cmd.BatchSize,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Printf("\nImporting %d archive(s) into %s...\n", len(files), cmd.DatabasePath)

	ctx := context.Background()
	orch.ImportFiles(ctx, files)

	status := orch.Status()
	stats, statsErr := db.Stats(ctx)

	fmt.Println("\n=== Import Summary ===")
	if statsErr == nil {
		fmt.Printf("Dictionaries in database: %d\n", stats.Dictionaries)
		fmt.Printf("Terms in database: %d\n", stats.Terms)
	}

	if len(status.Errors) > 0 {
		fmt.Printf("\nProblems reported:\n")
		for _, line := range status.Errors {
			if line.Count > 1 {
				fmt.Printf("  [ERROR] %s (x%d)\n", line.Text, line.Count)
			} else {
				fmt.Printf("  [ERROR] %s\n", line.Text)
			}
		}
		return fmt.Errorf("import finished with errors")
	}

	fmt.Println("\nImport complete!")
	return nil
}
