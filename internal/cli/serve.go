package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/planengine/planengine/internal/api"
	"github.com/planengine/planengine/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().String("db", ".", "directory holding the plan database")
	serveCmd.Flags().Bool("metrics", true, "expose /metrics")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only HTTP API over the plan database",
	Long: `Start an HTTP server exposing the most recent solve's solution, issues,
and cost breakdown, plus persisted plan history. serve does not itself
solve anything; run "planengine solve --persist" to populate history.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	dbDir, _ := cmd.Flags().GetString("db")
	metrics, _ := cmd.Flags().GetBool("metrics")

	db, err := sqlite.Open(dbDir)
	if err != nil {
		return fmt.Errorf("open plan database: %w", err)
	}
	defer db.Close()

	srv := api.NewServer(db)
	if metrics {
		srv.EnableMetrics()
	}

	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("listening on %s\n", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
