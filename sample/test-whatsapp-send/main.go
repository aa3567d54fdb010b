package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/xavierca1/lead-capture/internal/infra/integration/whatsapp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	token := os.Getenv("WHATSAPP_ACCESS_TOKEN")
	phoneID := os.Getenv("WHATSAPP_PHONE_ID")
	if token == "" || phoneID == "" {
		log.Fatal("WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_ID must be set")
	}

	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <recipient-number> [message]", os.Args[0])
	}
	to := os.Args[1]
	text := "Test message from the lead-capture service."
	if len(os.Args) > 2 {
		text = os.Args[2]
	}

	client := whatsapp.NewClient(token, phoneID)

	fmt.Printf("Sending to %s via phone id %s...\n", to, phoneID)
	if err := client.SendText(context.Background(), to, text); err != nil {
		log.Fatalf("send failed: %v", err)
	}
	fmt.Println("Message accepted by the Cloud API.")
}
