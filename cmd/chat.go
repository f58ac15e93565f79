package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mistakecoach/internal/coach"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the study buddy in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		chat := e.coach.NewChat()
		fmt.Println(coach.ChatGreeting)
		fmt.Println("(Type \"exit\" or press Ctrl+D to leave.)")

		in := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("\n> ")
			if !in.Scan() {
				fmt.Println()
				return in.Err()
			}
			text := strings.TrimSpace(in.Text())
			switch strings.ToLower(text) {
			case "":
				continue
			case "exit", "quit":
				return nil
			}

			stream, err := chat.Send(ctx, text)
			if err != nil {
				fmt.Println(coach.ChatErrorMessage)
				continue
			}
			for c := range stream {
				if c.Err != nil {
					fmt.Println()
					fmt.Println(coach.ChatErrorMessage)
					continue
				}
				fmt.Print(c.Text)
			}
			fmt.Println()
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	},
}
