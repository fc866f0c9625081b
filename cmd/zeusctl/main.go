package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/NeousAxis/globalworkflow/internal/domain"
	"github.com/NeousAxis/globalworkflow/internal/infra"
	"github.com/NeousAxis/globalworkflow/internal/storage"
)

const usage = `usage: zeusctl <command> [flags]

commands:
  layout                      create the storage folders
  list                        print the stored files as JSON
  archive -kind K -out FILE   zip one content folder
`

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(strings.TrimSpace(usage))
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		return err
	}
	store, err := storage.NewFileStore(cfg.StoragePath, cfg.BaseURL)
	if err != nil {
		return err
	}

	switch args[0] {
	case "layout":
		if err := store.EnsureLayout(); err != nil {
			return err
		}
		fmt.Fprintf(out, "storage ready at %s, served from %s/files/\n", store.BasePath(), store.BaseURL())
		return nil
	case "list":
		return list(store, out)
	case "archive":
		return archive(store, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func list(store *storage.FileStore, out io.Writer) error {
	catalog, err := store.ListAll()
	if err != nil {
		return err
	}
	folders := make([]string, 0, len(catalog))
	for folder := range catalog {
		folders = append(folders, folder)
	}
	sort.Strings(folders)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for _, folder := range folders {
		if err := enc.Encode(map[string]any{"folder": folder, "files": catalog[folder]}); err != nil {
			return err
		}
	}
	return nil
}

func archive(store *storage.FileStore, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	var kindFlag, outFlag string
	fs.StringVar(&kindFlag, "kind", "", "content kind or folder to archive (video, image, audio, document, social)")
	fs.StringVar(&outFlag, "out", "", "destination zip file (defaults to {folder}.zip)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	kind := domain.ParseContentKind(kindFlag)
	if !kind.Known() {
		return fmt.Errorf("unsupported kind %q", kindFlag)
	}
	dest := strings.TrimSpace(outFlag)
	if dest == "" {
		dest = kind.Folder() + ".zip"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	data, err := store.Archive(ctx, kind)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	fmt.Fprintf(out, "wrote %s (%d bytes)\n", dest, len(data))
	return nil
}
