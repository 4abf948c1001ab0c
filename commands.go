package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mohitkumar/checkin/client"
	"github.com/mohitkumar/checkin/generator"
	"github.com/mohitkumar/checkin/inspect"
	"github.com/mohitkumar/checkin/model"
	"github.com/mohitkumar/checkin/wizard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultServer = "http://localhost:8080"

// readDraft loads a department request from YAML. JSON drafts parse too.
func readDraft(path string) (model.DepartmentRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DepartmentRequest{}, err
	}
	draft := wizard.NewDraft()
	if err := yaml.Unmarshal(data, &draft); err != nil {
		return model.DepartmentRequest{}, fmt.Errorf("draft %s: %w", path, err)
	}
	return draft, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a department workflow from a YAML draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("draft")
			output, _ := cmd.Flags().GetString("output")
			skip, _ := cmd.Flags().GetBool("skip-validation")
			draft, err := readDraft(path)
			if err != nil {
				return err
			}
			wizard.SummarizeWorkflow(&draft)
			if !skip {
				if err := wizard.ValidateAll(draft); err != nil {
					return err
				}
			}
			final := generator.New().GenerateFinalDepartmentObject(draft.Department, draft.Staff, draft.Workflow, draft.Schedule)
			for _, w := range generator.Warnings(final) {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			switch output {
			case "workflow":
				return writeJSON(cmd.OutOrStdout(), final.VapiWorkflow)
			case "final":
				return writeJSON(cmd.OutOrStdout(), final)
			case "code":
				code, err := generator.GenerateFunctionCall(final)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
				return err
			}
			return fmt.Errorf("unknown output %q, want workflow, final or code", output)
		},
	}
	cmd.Flags().String("draft", "", "YAML department draft")
	cmd.Flags().String("output", "workflow", "workflow, final or code")
	cmd.Flags().Bool("skip-validation", false, "generate even when the draft is incomplete")
	cmd.MarkFlagRequired("draft")
	return cmd
}

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Evaluate a JSONPath expression against a generated workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			expr, _ := cmd.Flags().GetString("path")
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			doc, err := inspect.Parse(raw)
			if err != nil {
				return err
			}
			res, err := doc.Query(expr)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().String("file", "", "workflow JSON file")
	cmd.Flags().String("path", "$.steps[*].id", "JSONPath expression")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newPushReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push-report",
		Short: "Send a call executor report payload to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			path, _ := cmd.Flags().GetString("file")
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var req model.IngestRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("payload %s: %w", path, err)
			}
			id, err := client.New(server).PushReport(cmd.Context(), req)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().String("server", defaultServer, "checkin server url")
	cmd.Flags().String("file", "", "JSON report payload")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newUploadPDFCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload-pdf",
		Short: "Attach a PDF document to a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			reportId, _ := cmd.Flags().GetString("report")
			path, _ := cmd.Flags().GetString("file")
			pdf, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return client.New(server).UploadPDF(cmd.Context(), reportId, pdf)
		},
	}
	cmd.Flags().String("server", defaultServer, "checkin server url")
	cmd.Flags().String("report", "", "report id")
	cmd.Flags().String("file", "", "PDF file")
	cmd.MarkFlagRequired("report")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newCreateDepartmentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-department",
		Short: "Create a department on the server from a YAML draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, _ := cmd.Flags().GetString("server")
			path, _ := cmd.Flags().GetString("draft")
			draft, err := readDraft(path)
			if err != nil {
				return err
			}
			res, err := client.New(server).CreateDepartment(cmd.Context(), draft)
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
			return writeJSON(cmd.OutOrStdout(), res.Final)
		},
	}
	cmd.Flags().String("server", defaultServer, "checkin server url")
	cmd.Flags().String("draft", "", "YAML department draft")
	cmd.MarkFlagRequired("draft")
	return cmd
}
