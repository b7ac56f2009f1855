// Command sign prints svix headers for a payload so the webhook endpoint can
// be exercised locally, e.g.
//
//	WEBHOOK_SECRET=whsec_... go run ./cmd/sign -f event.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/evently/webhook-service/internal/envconfig"
	"github.com/evently/webhook-service/internal/svix"
)

func main() {
	file := flag.String("f", "-", "payload file, - for stdin")
	msgID := flag.String("id", "", "svix-id to sign with (random when empty)")
	flag.Parse()

	if err := envconfig.LoadDotEnv(".env.local", ".env"); err != nil {
		fail(err)
	}

	body, err := readPayload(*file)
	if err != nil {
		fail(err)
	}

	verifier, err := svix.NewVerifier(envconfig.Get("WEBHOOK_SECRET", ""))
	if err != nil {
		fail(err)
	}

	id := *msgID
	if id == "" {
		id = "msg_" + uuid.NewString()
	}

	headers := verifier.Headers(id, time.Now(), body)
	for _, name := range []string{svix.HeaderID, svix.HeaderTimestamp, svix.HeaderSignature} {
		fmt.Printf("%s: %s\n", name, headers.Get(name))
	}
}

func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "sign:", err)
	os.Exit(1)
}
