package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consultcrew/consultcrew/internal/config"
	"github.com/consultcrew/consultcrew/internal/memory"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage semantic memory",
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory counters",
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		stats, err := store.Stats(context.Background())
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		printHeader("Memory")
		fmt.Printf("Conversations: %d\n", stats.TotalConversations)
		fmt.Printf("Documents:     %d\n", stats.TotalDocuments)
		fmt.Printf("Chunks:        %d\n", stats.TotalChunks)
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all conversation memory (documents are kept)",
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		n, err := store.ClearConversations(context.Background())
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		printSuccess("Removed %d conversations", n)
	},
}

var memoryDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List stored documents",
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		docs, err := store.ListDocuments(context.Background())
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		if len(docs) == 0 {
			fmt.Println("No documents stored")
			return
		}
		for _, d := range docs {
			fmt.Printf("%s  %s (%s, %d chunks)\n", d.DocumentID, d.Filename, d.FileType, d.TotalChunks)
		}
	},
}

var memoryUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Chunk and store a text or markdown document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		doc, err := memory.ReadDocument(args[0], os.ReadFile)
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		docID, err := store.StoreDocument(context.Background(), doc)
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		printSuccess("Stored %s as %s", doc.Filename, docID)
	},
}

var memoryDeleteCmd = &cobra.Command{
	Use:   "delete <doc_id>",
	Short: "Delete a stored document and all its chunks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		ok, err := store.DeleteDocument(context.Background(), args[0])
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		if !ok {
			printError("no document with id %s", args[0])
			os.Exit(1)
		}
		printSuccess("Deleted %s", args[0])
	},
}

var memorySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored document chunks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := mustStore()
		defer cleanup()

		hits, err := store.SearchDocuments(context.Background(), args[0], 5, "")
		if err != nil {
			printError("%v", err)
			os.Exit(1)
		}
		if len(hits) == 0 {
			fmt.Println("No matches")
			return
		}
		for i, h := range hits {
			docID, _ := h.Metadata["document_id"].(string)
			fmt.Printf("%d. [%s, distance %.3f]\n%s\n\n", i+1, docID, h.Distance, h.Content)
		}
	},
}

func mustStore() (*memory.Store, func()) {
	settings, err := config.LoadSettings()
	if err != nil {
		printError("loading settings: %v", err)
		os.Exit(1)
	}
	store, cleanup, err := openStore(settings)
	if err != nil {
		printError("opening memory store: %v", err)
		os.Exit(1)
	}
	return store, cleanup
}

func init() {
	memoryCmd.AddCommand(memoryStatsCmd)
	memoryCmd.AddCommand(memoryClearCmd)
	memoryCmd.AddCommand(memoryDocsCmd)
	memoryCmd.AddCommand(memoryUploadCmd)
	memoryCmd.AddCommand(memoryDeleteCmd)
	memoryCmd.AddCommand(memorySearchCmd)
}
