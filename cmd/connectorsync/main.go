package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"connectorsync/internal/config"
	"connectorsync/internal/db"
	"connectorsync/internal/exchange"
	"connectorsync/internal/store"
	"connectorsync/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "connectorsync",
	Short: "Task tracking dashboard for a connector engineering team",
	Long:  `Connector Sync tracks tasks, work logs and deadlines for a small engineering team, all on the local machine.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st, kv := mustOpen()
		defer kv.Close()

		if err := tui.Run(st, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Write the exchange file (users and tasks) to a directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st, kv := mustOpen()
		defer kv.Close()

		dir := cfg.ExportsOutput
		if len(args) > 0 {
			dir = args[0]
		}

		snap := st.Snapshot()
		path, err := exchange.WriteFile(dir, snap.Users, snap.Tasks, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d users and %d tasks to %s\n", len(snap.Users), len(snap.Tasks), path)
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace users and tasks from an exchange file",
	Long: `Import reads an exchange file and, after confirmation, overwrites the
current users and tasks wholesale. Categories are not part of the exchange
file and are left untouched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")

		_, st, kv := mustOpen()
		defer kv.Close()

		staged, err := exchange.ParseFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if !yes {
			fmt.Printf("Import %d users and %d tasks? This overwrites all current members and tasks. [y/N] ",
				staged.UserCount(), staged.TaskCount())
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if !strings.EqualFold(strings.TrimSpace(answer), "y") {
				staged.Discard()
				fmt.Println("Canceled, nothing changed.")
				return
			}
		}

		if err := staged.Commit(st); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Data imported.")
	},
}

// mustOpen loads the config, opens storage and loads the domain store, or
// exits with the failure.
func mustOpen() (*config.Config, *store.Store, *db.KV) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	kv, err := db.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Load(kv)
	if err != nil {
		kv.Close()
		fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
		os.Exit(1)
	}

	return cfg, st, kv
}

func init() {
	importCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
