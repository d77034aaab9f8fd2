package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pnab-cultura/engine/internal/habilitacao"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/scoring"
)

func variantFor(kind string, specialStatus bool) (models.ProponentVariant, error) {
	switch models.ProponentKind(kind) {
	case models.KindIndividual:
		return models.Individual{SpecialStatus: specialStatus}, nil
	case models.KindOrganization:
		return models.Organization{}, nil
	case models.KindInformalGroup:
		return models.InformalGroup{}, nil
	default:
		return nil, fmt.Errorf("unknown proponent kind %q (want pf, pj or coletivo)", kind)
	}
}

func checklistCmd() *cobra.Command {
	var specialStatus bool
	cmd := &cobra.Command{
		Use:   "checklist <pf|pj|coletivo>",
		Short: "Print the habilitação checklist generated for a proponent kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := variantFor(args[0], specialStatus)
			if err != nil {
				return err
			}
			if specialStatus && v.Kind() != models.KindIndividual {
				return fmt.Errorf("--special-status only applies to pf")
			}
			reqs, err := habilitacao.Generate(v, time.Now())
			if err != nil {
				return err
			}
			renderChecklist(cmd.OutOrStdout(), reqs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&specialStatus, "special-status", false, "Individual declared a special status (no proof of residence)")
	return cmd
}

func renderChecklist(w io.Writer, reqs []habilitacao.Requirement) {
	t := newTable(w, table.Row{"#", "Key", "Document"})
	for i, r := range reqs {
		t.AppendRow(table.Row{i + 1, r.Key, r.Name})
	}
	t.Render()
}

var criterionLetters = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}

func scoreCmd() *cobra.Command {
	var (
		values   = make(map[string]*float64, len(criterionLetters))
		rejected bool
		reason   string
		final    bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a set of criteria without touching the database",
		Example: `  pnabctl score --a 8 --b 7 --c 9 --d 6 --e 0
  pnabctl score --a 10 --b 10 --c 10 --d 10 --e 10 --f 5 --final`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c models.Criteria
			slots := []**float64{&c.A, &c.B, &c.C, &c.D, &c.E, &c.F, &c.G, &c.H, &c.I}
			for i, letter := range criterionLetters {
				if cmd.Flags().Changed(letter) {
					v := *values[letter]
					*slots[i] = &v
				}
			}
			res, err := scoring.Evaluate(scoring.Submission{
				Criteria:        c,
				Rejected:        rejected,
				RejectionReason: reason,
				Final:           final,
			})
			if err != nil {
				return err
			}
			renderScore(cmd.OutOrStdout(), res)
			return nil
		},
	}
	for i, letter := range criterionLetters {
		limit := scoring.MandatoryMax
		if i >= 5 {
			limit = scoring.BonusMax
		}
		values[letter] = cmd.Flags().Float64(letter, 0, fmt.Sprintf("Criterion %s (0-%g)", strings.ToUpper(letter), limit))
	}
	cmd.Flags().BoolVar(&rejected, "rejected", false, "Evaluator recommends rejection")
	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	cmd.Flags().BoolVar(&final, "final", false, "Apply submission rules (all mandatory criteria, reason on rejection)")
	return cmd
}

func renderScore(w io.Writer, r scoring.Result) {
	final := "-"
	if r.Final != nil {
		final = fmt.Sprintf("%.2f", *r.Final)
	}
	t := newTable(w, table.Row{"Mandatory", "Bonus", "Final", "Disqualified", "Missing"})
	t.AppendRow(table.Row{
		fmt.Sprintf("%.2f", r.MandatorySum),
		fmt.Sprintf("%.2f", r.BonusSum),
		final,
		r.Disqualified,
		strings.Join(r.Missing, ","),
	})
	t.Render()
}
