package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"charpix/internal/blobstore"
	"charpix/internal/config"
	"charpix/internal/server"
	"charpix/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the charpix API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}
			if cfg.MediaRoot == "" {
				return fmt.Errorf("media root is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			bs, err := blobstore.NewLocalDisk(cfg.MediaRoot)
			if err != nil {
				return err
			}

			publicBaseURL := cfg.PublicBaseURL
			if publicBaseURL == "" {
				publicBaseURL = cfg.APIURL
			}

			srv := server.New(addr, st, bs, server.Options{
				ProjectPrefix:      cfg.ProjectPrefix,
				PublicBaseURL:      publicBaseURL,
				MaxUploadBytes:     cfg.Gallery.MaxUploadBytes,
				MultipartMaxMemory: cfg.Gallery.MultipartMaxMemory,
				AllowedFormats:     cfg.Gallery.AllowedFormats,
				UploadConcurrency:  cfg.Gallery.UploadConcurrency,
			}, logger)
			return srv.ListenAndServe()
		},
	}
}
