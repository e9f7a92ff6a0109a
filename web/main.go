package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/df07/go-csg-raytracer/web/server"
)

func main() {
	var port int
	var static string
	cmd := &cobra.Command{
		Use:   "csgtracer-web",
		Short: "Ray tracer web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.NewServer(port, static).Start()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to serve on")
	cmd.Flags().StringVar(&static, "static", "static", "Directory of static files (empty to disable)")

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}
