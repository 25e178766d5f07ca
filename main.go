package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"blockedit/internal/app"
	"blockedit/internal/config"
)

// version is set during build with -ldflags
var version = "dev"

var (
	configPath  string
	autoApprove bool
	importKind  string
	exportOut   string
	exportClip  bool
	newKind     string
	newFromClip bool
)

// openApp loads the config and opens the application. Logs go to stderr so
// they never mix with command output or the MCP stream.
func openApp() (*app.App, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}
	if autoApprove {
		cfg.MCPAutoApprove = true
	}
	a, err := app.New(cfg, nil)
	return a, cfg, err
}

var rootCmd = &cobra.Command{
	Use:   "blockedit",
	Short: "Block-based editor for articles, changelogs and roadmaps",
	Long: `blockedit stores documents as ordered blocks (paragraphs, headings, lists,
to-dos, images, code, callouts, dividers) and serializes them as Markdown.
Without a subcommand it serves the editor to MCP clients over stdio.`,
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve documents to MCP clients over stdin/stdout",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, _, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return a.ServeMCP()
}

var importCmd = &cobra.Command{
	Use:   "import <file.md>",
	Short: "Import a Markdown file as a document linked to that file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		id, err := a.Import(args[0], importKind)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create an empty document, or one from the clipboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := ""
		if newFromClip {
			text, err := clipboard.ReadAll()
			if err != nil {
				return fmt.Errorf("read clipboard: %w", err)
			}
			body = text
		}
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		d, err := a.Documents().Create(newKind, args[0], body)
		if err != nil {
			return err
		}
		fmt.Println(d.ID)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <document-id>",
	Short: "Print a document as Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		docs := a.Documents()
		if exportOut != "" {
			out, err := filepath.Abs(exportOut)
			if err != nil {
				return err
			}
			return docs.Export(args[0], out)
		}
		text, err := docs.Text(args[0])
		if err != nil {
			return err
		}
		if exportClip {
			if err := clipboard.WriteAll(text); err != nil {
				return fmt.Errorf("write clipboard: %w", err)
			}
			fmt.Fprintln(os.Stderr, "✓ Copied to clipboard")
			return nil
		}
		fmt.Print(text)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:       "list [kind]",
	Short:     "List documents",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"article", "changelog", "roadmap"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		kind := ""
		if len(args) == 1 {
			kind = args[0]
		}
		docs, err := a.Documents().List(kind)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tTITLE\tUPDATED")
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Kind, d.Title, d.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var revisionsCmd = &cobra.Command{
	Use:   "revisions <document-id>",
	Short: "List the autosaved revisions of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		revs, err := a.Documents().Revisions(args[0])
		if err != nil {
			return err
		}
		for _, r := range revs {
			fmt.Printf("%s  %s  %d bytes\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), len(r.Body))
		}
		return nil
	},
}

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "List destructive MCP calls waiting for an answer",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		pending, err := a.Approvals().ListPending()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("No pending approvals")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTOOL\tDESCRIPTION\tSINCE")
		for _, p := range pending {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Tool, p.Description, p.CreatedAt.Format("15:04:05"))
		}
		return w.Flush()
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <approval-id>",
	Short: "Let a waiting destructive MCP call run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return answerApproval(args[0], true)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <approval-id>",
	Short: "Refuse a waiting destructive MCP call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return answerApproval(args[0], false)
	},
}

func answerApproval(id string, approved bool) error {
	a, _, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.Approvals().Resolve(id, approved); err != nil {
		return err
	}
	verb := "Rejected"
	if approved {
		verb = "Approved"
	}
	fmt.Fprintf(os.Stderr, "✓ %s %s\n", verb, id)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of blockedit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blockedit version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&autoApprove, "yes", "y", false, "Run destructive MCP tools without asking")

	importCmd.Flags().StringVar(&importKind, "kind", "article", "Document kind: article, changelog or roadmap")
	newCmd.Flags().StringVar(&newKind, "kind", "article", "Document kind: article, changelog or roadmap")
	newCmd.Flags().BoolVar(&newFromClip, "from-clipboard", false, "Use the clipboard as the Markdown body")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Write to a file instead of stdout")
	exportCmd.Flags().BoolVar(&exportClip, "clipboard", false, "Copy to the clipboard instead of printing")

	rootCmd.AddCommand(serveCmd, importCmd, newCmd, exportCmd, listCmd, revisionsCmd, approvalsCmd, approveCmd, rejectCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
