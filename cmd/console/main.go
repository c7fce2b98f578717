package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type ConsoleConfig struct {
	APIBaseURL string
	Timeout    time.Duration
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := &ConsoleConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:    30 * time.Second,
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	if !testConnection(client, cfg.APIBaseURL) {
		fmt.Fprintf(os.Stderr, "Could not connect to API. Please ensure the API is running.\nTry: docker-compose up -d\n")
		os.Exit(1)
	}

	cities, err := listCities(client, cfg.APIBaseURL)
	if err != nil || len(cities) == 0 {
		fmt.Fprintf(os.Stderr, "Failed to list cities: %v\n", err)
		os.Exit(1)
	}
	characters, err := listCharacters(client, cfg.APIBaseURL)
	if err != nil || len(characters) == 0 {
		fmt.Fprintf(os.Stderr, "Failed to list characters: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Starting Cities:")
	for i, c := range cities {
		fmt.Printf("  %d - %s (difficulty %d)\n", i+1, c.Name, c.Difficulty)
	}
	fmt.Print("\nSelect a starting city by number: ")
	var cityChoice int
	if _, err := fmt.Scanf("%d", &cityChoice); err != nil || cityChoice < 1 || cityChoice > len(cities) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	fmt.Println("\nCharacters:")
	for i, ch := range characters {
		fmt.Printf("  %d - %s %s (%s)\n", i+1, ch.Icon, ch.Name, ch.BonusDescription)
	}
	fmt.Print("\nSelect a character by number: ")
	var charChoice int
	if _, err := fmt.Scanf("%d", &charChoice); err != nil || charChoice < 1 || charChoice > len(characters) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	fmt.Print("\nEnter your name: ")
	var playerName string
	if _, err := fmt.Scanf("%s", &playerName); err != nil || strings.TrimSpace(playerName) == "" {
		fmt.Fprintf(os.Stderr, "A name is required\n")
		os.Exit(1)
	}

	ps, err := startGame(client, cfg.APIBaseURL,
		cities[cityChoice-1].ID, characters[charChoice-1].ID, playerName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start game: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(cfg, client, ps, cities[cityChoice-1]),
		tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
