package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import questions from an Excel workbook",
	Long: `Import questions from an Excel workbook into the question bank.

Every sheet needs a header row naming the question, the four options, the
correct answer and the main category. Rows without a type use --type.
Invalid rows are skipped and logged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defType, _ := cmd.Flags().GetString("type")

		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		logger := newLogger(cfg, nil)

		res, err := importer.New(st.QuestionRepo(), logger).ImportFile(cmd.Context(), args[0], defType)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d questions (%d new main categories, %d new subcategories).\n",
			res.Questions, res.MainCategories, res.Subcategories)
		if len(res.Skipped) > 0 {
			fmt.Printf("Skipped %d invalid rows.\n", len(res.Skipped))
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("type", "", "Question type for rows without one: verbal or quantitative")
}
