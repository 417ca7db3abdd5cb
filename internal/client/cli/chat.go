package cli

import (
	"context"
	"os"
)

// Chat sends one multi-line message to the assistant and prints the reply.
func (a *App) Chat(ctx context.Context) error {
	msg, err := getMultiline(a.reader, "Ask the assistant", os.Stdout)
	if err != nil {
		return err
	}
	if msg == "" {
		return nil
	}

	reply, err := a.assistant.Send(ctx, msg)
	if err != nil {
		return err
	}
	printlnFn(reply)
	return nil
}
