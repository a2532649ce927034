// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// chatctl is the command-line client for the chat service.
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatctl",
	Short: "Talk to the Aleutian chat service from the terminal",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "Base URL of the chat service (default $CHAT_SERVICE_URL or http://localhost:12310)")
	rootCmd.PersistentFlags().String("token", "", "API bearer token (default $CHAT_API_TOKEN)")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(conversationsCmd)
}
