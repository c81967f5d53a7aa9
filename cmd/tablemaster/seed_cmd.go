package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tablemaster/tablemaster/modules/menu/domain/category"
	"github.com/tablemaster/tablemaster/modules/menu/services"
)

type seedFile struct {
	Categories []string `yaml:"categories"`
}

type seedResult struct {
	Slug    string `json:"slug"`
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

func newSeedCmd(admin *adminFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data",
	}
	cmd.AddCommand(newSeedCategoriesCmd(admin))
	return cmd
}

func newSeedCategoriesCmd(admin *adminFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Create the menu categories listed in a YAML file; existing ones are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			slugs, err := parseSeedCategories(f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			s, err := openSession(cmd.Context(), admin)
			if err != nil {
				return err
			}
			defer s.Close()

			svc := s.app.Service(services.CategoryService{}).(*services.CategoryService)
			out := make([]seedResult, 0, len(slugs))
			for _, slug := range slugs {
				id, created, err := svc.EnsureCategory(s.ctx, slug)
				if err != nil {
					return fmt.Errorf("seed %q: %w", slug, err)
				}
				out = append(out, seedResult{Slug: slug, ID: id, Created: created})
			}
			return writeJSON(out)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML file with a categories list (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// parseSeedCategories returns the normalized, de-duplicated slugs of the file
// in their listed order.
func parseSeedCategories(r io.Reader) ([]string, error) {
	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty seed file")
		}
		return nil, err
	}
	seen := make(map[string]struct{}, len(doc.Categories))
	out := make([]string, 0, len(doc.Categories))
	for _, raw := range doc.Categories {
		slug := category.NormalizeSlug(raw)
		if slug == "" {
			return nil, errors.New("blank category in seed file")
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out, nil
}
