package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/importer"
	"github.com/qudurat/qudurat/internal/store"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the question bank categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeVal, _ := cmd.Flags().GetString("type")
		sub, _ := cmd.Flags().GetBool("sub")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		ctx := cmd.Context()

		var cats []store.Category
		var total int
		all := store.Page{Number: 1, Size: 1 << 20}
		if sub {
			cats, total, err = st.CategoryRepo().ListSub(ctx, all)
		} else {
			qt, terr := importer.NormalizeType(typeVal, store.QuestionTypeQuantitative)
			if terr != nil {
				return terr
			}
			cats, total, err = st.CategoryRepo().ListMain(ctx, qt, all)
		}
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}

		if total == 0 {
			fmt.Println("No categories found.")
			return nil
		}
		fmt.Printf("%-6s  %s\n", "ID", "Name")
		fmt.Println(strings.Repeat("─", 40))
		for _, c := range cats {
			fmt.Printf("%-6d  %s\n", c.ID, c.Name)
		}
		fmt.Printf("\n%d categories\n", total)
		return nil
	},
}

func init() {
	categoriesCmd.Flags().String("type", "", "Question type of the main categories (default quantitative)")
	categoriesCmd.Flags().Bool("sub", false, "List subcategories instead of main categories")
}
