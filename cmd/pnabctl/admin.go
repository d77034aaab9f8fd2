package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
)

func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute <project-id>",
		Short: "Recompute a project's status from its evaluations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid project id: %w", err)
			}
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			res, err := services.NewProposalService(store, nil).RecomputeAggregate(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderAggregate(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func renderAggregate(w io.Writer, res *services.AggregateResult) {
	avg := "-"
	if res.Summary.AverageFinal != nil {
		avg = fmt.Sprintf("%.2f", *res.Summary.AverageFinal)
	}
	t := newTable(w, table.Row{"Project", "Status", "Changed", "Evaluations", "Concluded", "Average", "Any disqualified"})
	t.AppendRow(table.Row{
		res.ProjectID,
		res.Status,
		res.Changed,
		res.State.Total,
		res.State.Concluded,
		avg,
		res.Summary.AnyDisqualified,
	})
	t.Render()
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	var email, name, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account with any role; the password is read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.Role(role)
			if !r.IsValid() {
				return fmt.Errorf("unknown role %q", role)
			}
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			u, err := services.NewAuthService(store.Users(), nil, 0).CreateUser(cmd.Context(), email, password, name, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "Account email")
	create.Flags().StringVar(&name, "name", "", "Display name")
	create.Flags().StringVar(&role, "role", string(models.RoleEvaluator), "proponent, evaluator or admin")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(create)
	return cmd
}

// readPassword takes PNAB_PASSWORD when set, otherwise the first line of r.
func readPassword(r io.Reader) (string, error) {
	if p := os.Getenv("PNAB_PASSWORD"); p != "" {
		return p, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty password")
	}
	return line, nil
}
