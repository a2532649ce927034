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
	"bufio"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianChat/datatypes"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question and print the answer with its sources",
	Args:  cobra.MinimumNArgs(1),
	Run:   runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session (Ctrl-D to quit)",
	Run:   runChat,
}

func init() {
	for _, cmd := range []*cobra.Command{askCmd, chatCmd} {
		cmd.Flags().String("strategy", "", "Retrieval strategy: similarity, hybrid, or rerank (default: automatic)")
		cmd.Flags().Int("k", 0, "Number of document chunks to retrieve")
		cmd.Flags().StringSlice("document", nil, "Restrict retrieval to these document IDs (repeatable)")
	}
	chatCmd.Flags().String("resume", "", "Conversation ID to continue")
}

func runAsk(cmd *cobra.Command, args []string) {
	client := newClient(cmd)
	resp, err := sendChat(cmd, client, strings.Join(args, " "), "")
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("\n%s\n", resp.Answer)
	printSources(resp.Sources)
	fmt.Printf("\n(conversation %s, strategy %s)\n", resp.ConversationID, resp.Strategy)
}

func runChat(cmd *cobra.Command, args []string) {
	client := newClient(cmd)
	conversationID, _ := cmd.Flags().GetString("resume")
	if conversationID != "" {
		fmt.Printf("Resuming conversation %s\n", conversationID)
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), datatypes.MaxQueryBytes)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}

		resp, err := sendChat(cmd, client, query, conversationID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		conversationID = resp.ConversationID
		fmt.Printf("\nassistant> %s\n\n", resp.Answer)
	}
}

func sendChat(cmd *cobra.Command, client *apiClient, query, conversationID string) (*datatypes.ChatResponse, error) {
	strategy, _ := cmd.Flags().GetString("strategy")
	k, _ := cmd.Flags().GetInt("k")
	documentIDs, _ := cmd.Flags().GetStringSlice("document")

	req := datatypes.ChatRequest{
		ConversationID: conversationID,
		Query:          query,
		Strategy:       strategy,
		K:              k,
		DocumentIDs:    documentIDs,
	}
	var resp datatypes.ChatResponse
	if err := client.doJSON(http.MethodPost, "/v1/chat", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func printSources(sources []datatypes.Chunk) {
	if len(sources) == 0 {
		fmt.Println("\n(no document sources used)")
		return
	}
	fmt.Println("\nSources:")
	for i, chunk := range sources {
		fmt.Printf("%d. %s (chunk %d/%d)\n", i+1, chunk.Filename, chunk.ChunkIndex+1, chunk.TotalChunks)
	}
}
