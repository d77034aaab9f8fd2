package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pnab-cultura/engine/internal/budget"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
)

// noticeFile is the seed file layout:
//
//	notices:
//	  - code: PNAB-2025
//	    title: Edital de fomento
//	    opens_at: 2025-03-01T00:00:00-03:00
//	    closes_at: 2025-05-01T23:59:59-03:00
//	    ceiling: "R$ 50.000,00"
//	    template_files: [https://example.org/anexo-i.pdf]
type noticeFile struct {
	Notices []struct {
		Code          string    `yaml:"code"`
		Title         string    `yaml:"title"`
		OpensAt       time.Time `yaml:"opens_at"`
		ClosesAt      time.Time `yaml:"closes_at"`
		Ceiling       string    `yaml:"ceiling"`
		TemplateFiles []string  `yaml:"template_files"`
	} `yaml:"notices"`
}

func loadNotices(r io.Reader) ([]models.Notice, error) {
	var f noticeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode notices: %w", err)
	}
	if len(f.Notices) == 0 {
		return nil, fmt.Errorf("no notices in file")
	}
	out := make([]models.Notice, 0, len(f.Notices))
	for i, n := range f.Notices {
		ceiling, err := budget.ParseAmount(n.Ceiling)
		if err != nil {
			return nil, fmt.Errorf("notice %d (%s): %w", i, n.Code, err)
		}
		out = append(out, models.Notice{
			Code:          n.Code,
			Title:         n.Title,
			OpensAt:       n.OpensAt,
			ClosesAt:      n.ClosesAt,
			CeilingAmount: ceiling,
			TemplateFiles: n.TemplateFiles,
		})
	}
	return out, nil
}

func renderNotices(w io.Writer, notices []models.Notice) {
	t := newTable(w, table.Row{"Code", "Title", "Opens", "Closes", "Ceiling"})
	for _, n := range notices {
		t.AppendRow(table.Row{n.Code, n.Title, n.OpensAt.Format(time.DateOnly), n.ClosesAt.Format(time.DateOnly), n.CeilingAmount.StringFixed(2)})
	}
	t.Render()
}

func noticesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Manage notices (editais)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update notices from a YAML file, matched by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			notices, err := loadNotices(f)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			saved, err := services.NewNoticeService(store.Notices()).ImportNotices(cmd.Context(), notices)
			if err != nil {
				return err
			}
			renderNotices(cmd.OutOrStdout(), saved)
			return nil
		},
	})
	return cmd
}
