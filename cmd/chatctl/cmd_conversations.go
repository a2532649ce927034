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
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianChat/datatypes"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Manage conversations",
}

func init() {
	conversationsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			var resp struct {
				Conversations []datatypes.ConversationPreview `json:"conversations"`
			}
			if err := client.doJSON(http.MethodGet, "/v1/conversations", nil, &resp); err != nil {
				log.Fatalf("Error: %v", err)
			}
			if len(resp.Conversations) == 0 {
				fmt.Println("No conversations yet.")
				return
			}
			for _, conv := range resp.Conversations {
				fmt.Printf("%s  %-40s  %3d msgs  %s\n", conv.ID, conv.Title, conv.MessageCount, conv.UpdatedAt)
				if conv.LastMessage != "" {
					fmt.Printf("    %s\n", conv.LastMessage)
				}
			}
		},
	})

	conversationsCmd.AddCommand(&cobra.Command{
		Use:   "search [query]",
		Short: "Find conversations by topic",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			var resp struct {
				Results []datatypes.ConversationSearchResult `json:"results"`
			}
			path := "/v1/conversations/search?q=" + url.QueryEscape(args[0])
			if err := client.doJSON(http.MethodGet, path, nil, &resp); err != nil {
				log.Fatalf("Error: %v", err)
			}
			for _, result := range resp.Results {
				fmt.Printf("%s  %s\n    matched: %s\n", result.Conversation.ID, result.Conversation.Title, result.MatchedTurn.Content)
			}
		},
	})

	exportCmd := &cobra.Command{
		Use:   "export [conversationId]",
		Short: "Export a conversation transcript",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")

			data, err := client.download("/v1/conversations/" + args[0] + "/export?format=" + url.QueryEscape(format))
			if err != nil {
				log.Fatalf("Error: %v", err)
			}
			if output == "" {
				output = fmt.Sprintf("conversation-%s.%s", args[0], format)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				log.Fatalf("Error writing %s: %v", output, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", output, len(data))
		},
	}
	exportCmd.Flags().String("format", datatypes.ExportFormatJSON, "Export format: json, txt, or pdf")
	exportCmd.Flags().String("output", "", "Output file (default conversation-<id>.<format>)")
	conversationsCmd.AddCommand(exportCmd)

	conversationsCmd.AddCommand(&cobra.Command{
		Use:   "share [conversationId]",
		Short: "Mint an expiring read-only share link",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			var link datatypes.ShareLink
			if err := client.doJSON(http.MethodPost, "/v1/conversations/"+args[0]+"/share", nil, &link); err != nil {
				log.Fatalf("Error: %v", err)
			}
			fmt.Printf("Share link: %s (expires %s)\n", link.URL, link.ExpiresAt)
		},
	})

	conversationsCmd.AddCommand(&cobra.Command{
		Use:   "delete [conversationId]",
		Short: "Delete a conversation and its history",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client := newClient(cmd)
			if err := client.doJSON(http.MethodDelete, "/v1/conversations/"+args[0], nil, nil); err != nil {
				log.Fatalf("Error: %v", err)
			}
			fmt.Printf("Deleted conversation %s\n", args[0])
		},
	})
}
