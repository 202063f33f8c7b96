package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"lab-inventory/internal/config"
	"lab-inventory/pkg/labclient"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// newClient builds an API client whose session is kept in LABINV_SESSION_FILE
// or the user config directory.
func newClient(conf *config.Config) (*labclient.Client, error) {
	path := conf.Client.SessionFile
	if path == "" {
		p, err := labclient.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	store := labclient.NewFileStore(afero.NewOsFs(), path)
	return labclient.New(conf.Client.BaseURL, labclient.NewSessionManager(store)), nil
}

func newClientCmds(cfg func() *config.Config) []*cobra.Command {
	return []*cobra.Command{
		newLoginCmd(cfg),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg),
		newMaterialsCmd(cfg),
		newBorrowCmd(cfg),
	}
}

func newLoginCmd(cfg func() *config.Config) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the inventory API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("LABINV_PASSWORD")
			}
			c, err := newClient(cfg())
			if err != nil {
				return err
			}
			s, err := c.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s), session valid until %s\n",
				s.User.FullName(), s.User.RoleCode(), s.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to LABINV_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cfg())
			if err != nil {
				return err
			}
			return c.Logout()
		},
	}
}

func newWhoamiCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cfg())
			if err != nil {
				return err
			}
			s, err := c.Sessions().Refresh(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s <%s>\n", s.User.FullName(), s.User.Email)
			fmt.Fprintf(out, "role:       %s\n", s.User.RoleCode())
			fmt.Fprintf(out, "privileges: %s\n", strings.Join(s.Privileges, ", "))
			return nil
		},
	}
}

func newMaterialsCmd(cfg func() *config.Config) *cobra.Command {
	var q labclient.MaterialQuery
	cmd := &cobra.Command{
		Use:   "materials",
		Short: "List materials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient(cfg())
			if err != nil {
				return err
			}
			materials, err := c.Materials(cmd.Context(), q)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tNAME\tCATEGORY\tAVAILABLE\tUNIT\tSTATUS")
			for _, m := range materials {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					m.ID, m.ItemCode, m.ItemName, m.CategoryName(), m.QuantityAvailable, m.Unit, m.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", "", "category short name")
	cmd.Flags().StringVarP(&q.Search, "search", "q", "", "search text")
	cmd.Flags().BoolVar(&q.IncludeDeleted, "include-deleted", false, "include deleted materials")
	return cmd
}

func newBorrowCmd(cfg func() *config.Config) *cobra.Command {
	var (
		materialID, userID string
		form               labclient.BorrowForm
	)
	cmd := &cobra.Command{
		Use:   "borrow",
		Short: "Borrow a material",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mid, err := uuid.Parse(materialID)
			if err != nil {
				return fmt.Errorf("invalid material id: %w", err)
			}
			c, err := newClient(cfg())
			if err != nil {
				return err
			}
			s, err := c.Sessions().Current()
			if err != nil {
				return err
			}
			form.UserID = s.User.ID
			if userID != "" {
				if form.UserID, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("invalid user id: %w", err)
				}
			}

			material, err := c.Material(cmd.Context(), mid)
			if err != nil {
				return err
			}
			form.Material = *material
			if form.Quantity > material.QuantityAvailable {
				fmt.Fprintf(cmd.ErrOrStderr(), "only %d available, borrowing %d\n", material.QuantityAvailable, material.QuantityAvailable)
			}

			b, err := c.Borrow(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Borrowed %d x %s (slip %s)\n", b.QuantityBorrowed, material.ItemName, b.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&materialID, "material", "", "material id")
	cmd.Flags().StringVar(&userID, "user", "", "borrower id (defaults to the logged in user)")
	cmd.Flags().IntVar(&form.Quantity, "qty", 1, "quantity")
	cmd.Flags().StringVar(&form.Department, "department", "", "department")
	cmd.Flags().StringVar(&form.Remarks, "remarks", "", "remarks")
	_ = cmd.MarkFlagRequired("material")
	return cmd
}
