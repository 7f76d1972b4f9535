package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// TerminalPrompter prints the hand-off instruction and waits for Enter.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p TerminalPrompter) AwaitCredential(ctx context.Context) error {
	fmt.Fprintln(p.Out, "Scan the QR code in WhatsApp on your phone, then press Enter...")

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(p.In).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
