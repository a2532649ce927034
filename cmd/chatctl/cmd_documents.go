// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianChat/datatypes"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage ingested documents",
}

func init() {
	documentsCmd.AddCommand(&cobra.Command{
		Use:   "upload [file...]",
		Short: "Upload and ingest documents (pdf, csv, txt, md)",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			for _, path := range args {
				var resp datatypes.IngestResponse
				if err := client.upload("/v1/documents", path, &resp); err != nil {
					log.Fatalf("Error uploading %s: %v", path, err)
				}
				fmt.Printf("Ingested %s as %s (%d chunks)\n", resp.Filename, resp.DocumentID, resp.TotalChunks)
			}
		},
	})

	documentsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List ingested documents",
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			var resp struct {
				Documents []datatypes.DocumentInfo `json:"documents"`
			}
			if err := client.doJSON(http.MethodGet, "/v1/documents", nil, &resp); err != nil {
				log.Fatalf("Error: %v", err)
			}
			if len(resp.Documents) == 0 {
				fmt.Println("No documents ingested.")
				return
			}
			for _, doc := range resp.Documents {
				fmt.Printf("%s  %-40s  %4d chunks  %s\n", doc.DocumentID, doc.Filename, doc.TotalChunks, doc.IngestedAt)
			}
		},
	})

	documentsCmd.AddCommand(&cobra.Command{
		Use:   "delete [documentId]",
		Short: "Delete a document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			if err := client.doJSON(http.MethodDelete, "/v1/documents/"+args[0], nil, nil); err != nil {
				log.Fatalf("Error: %v", err)
			}
			fmt.Printf("Deleted document %s\n", args[0])
		},
	})
}
