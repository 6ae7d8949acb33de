// Studio CLI - Command line client for LLMCreativeStudio
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nickfox/LLMCreativeStudio/clients/go/studio"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("STUDIO_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := studio.NewClient(baseURL)
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "chat":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: studio chat <message> [session-id] [project-id]")
			os.Exit(1)
		}
		req := studio.ChatRequest{Message: os.Args[2]}
		if len(os.Args) > 3 {
			req.SessionID = os.Args[3]
		}
		if len(os.Args) > 4 {
			req.ProjectID = os.Args[4]
		}
		resp, err := client.Chat(req)
		exitOnError(err)
		fmt.Printf("session: %s\n", resp.SessionID)
		fmt.Printf("target:  %s", resp.Decision.Target)
		if resp.Decision.Model != "" {
			fmt.Printf(" (%s)", resp.Decision.Model)
		}
		if resp.Decision.Fallback {
			fmt.Print(" [fallback]")
		}
		fmt.Println()
		fmt.Printf("body:    %s\n", resp.Decision.Body)
		if resp.Decision.DataQuery != "" {
			fmt.Printf("query:   %s\n", resp.Decision.DataQuery)
		}
		fmt.Printf("to:      %v\n", resp.Recipients)

	case "read":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: studio read <session-id> [limit]")
			os.Exit(1)
		}
		limit := 20
		if len(os.Args) > 3 {
			if n, err := strconv.Atoi(os.Args[3]); err == nil {
				limit = n
			}
		}
		resp, err := client.Messages(os.Args[2], limit, 0)
		exitOnError(err)
		for _, msg := range resp.Messages {
			ts := time.UnixMilli(msg.Timestamp).Format("2006-01-02 15:04:05")
			name := msg.DisplayName
			if name == "" {
				name = msg.Sender
			}
			fmt.Printf("[%s] %s: %s\n", ts, name, msg.Body)
		}

	case "debate":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: studio debate <session-id>")
			os.Exit(1)
		}
		resp, err := client.Debate(os.Args[2])
		exitOnError(err)
		if !resp.Active {
			fmt.Println("no active debate")
			return
		}
		fmt.Printf("%s / %s", resp.Status.Round, resp.Status.State)
		if resp.WaitingForUser {
			fmt.Print(" (waiting for you)")
		}
		fmt.Println()

	case "clear":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: studio clear <session-id>")
			os.Exit(1)
		}
		resp, err := client.ClearSession(os.Args[2])
		exitOnError(err)
		fmt.Printf("cleared, new session: %s\n", resp.SessionID)

	case "project":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: studio project <name> [type]")
			os.Exit(1)
		}
		req := studio.CreateProjectRequest{Name: os.Args[2]}
		if len(os.Args) > 3 {
			req.Type = os.Args[3]
		}
		resp, err := client.CreateProject(req)
		exitOnError(err)
		fmt.Printf("created project %s (%s)\n", resp.Name, resp.ID)

	case "cast":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: studio cast <project-id> <character-name> <llm>")
			os.Exit(1)
		}
		resp, err := client.AssignCharacter(os.Args[2], studio.AssignCharacterRequest{
			Name: os.Args[3],
			LLM:  os.Args[4],
		})
		exitOnError(err)
		fmt.Printf("%s is now played by %s\n", resp.Name, resp.LLM)

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Studio CLI

Usage: studio <command> [args]

Commands:
  health                               Check server health
  chat <message> [session] [project]   Route a message
  read <session-id> [limit]            Read session history
  debate <session-id>                  Show debate status
  clear <session-id>                   Clear a session
  project <name> [type]                Create a project
  cast <project-id> <name> <llm>       Assign a character

Environment:
  STUDIO_URL  Server URL (default http://localhost:8080)`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
