package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/grand-tour/internal/handlers"
	"github.com/jwebster45206/grand-tour/pkg/content"
	"github.com/jwebster45206/grand-tour/pkg/state"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func decodeResponse(resp *http.Response, wantStatus int, out interface{}) error {
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func listCities(client *http.Client, baseURL string) ([]content.City, error) {
	resp, err := client.Get(baseURL + "/v1/content/cities")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	var cities []content.City
	if err := decodeResponse(resp, http.StatusOK, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func listCharacters(client *http.Client, baseURL string) ([]content.Character, error) {
	resp, err := client.Get(baseURL + "/v1/content/characters")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	var chars []content.Character
	if err := decodeResponse(resp, http.StatusOK, &chars); err != nil {
		return nil, err
	}
	return chars, nil
}

func startGame(client *http.Client, baseURL, city, character, playerName string) (*state.PlayerState, error) {
	req := handlers.StartGameRequest{
		City:       city,
		Character:  character,
		PlayerName: playerName,
	}
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(baseURL+"/v1/game", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var ps state.PlayerState
	if err := decodeResponse(resp, http.StatusCreated, &ps); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	return &ps, nil
}

func postAction(client *http.Client, baseURL string, id uuid.UUID, action string, body interface{}, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/game/%s/%s", baseURL, id, action),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeResponse(resp, http.StatusOK, out)
}

func move(client *http.Client, baseURL string, id uuid.UUID, direction string) (*state.MoveOutcome, error) {
	var out state.MoveOutcome
	if err := postAction(client, baseURL, id, "move", handlers.MoveRequest{Direction: direction}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func solveRiddle(client *http.Client, baseURL string, id uuid.UUID, answer string) (*state.SolveOutcome, error) {
	var out state.SolveOutcome
	if err := postAction(client, baseURL, id, "riddle", handlers.RiddleRequest{Answer: answer}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func resolveEvent(client *http.Client, baseURL string, id uuid.UUID, choice string) (*state.EventOutcome, error) {
	var out state.EventOutcome
	if err := postAction(client, baseURL, id, "event", handlers.EventRequest{Choice: choice}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func completeGame(client *http.Client, baseURL string, id uuid.UUID) (*handlers.CompleteResponse, error) {
	var out handlers.CompleteResponse
	if err := postAction(client, baseURL, id, "complete", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getLeaderboard(client *http.Client, baseURL string, limit int) (*handlers.LeaderboardResponse, error) {
	url := fmt.Sprintf("%s/v1/leaderboard?limit=%d", baseURL, limit)
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	var out handlers.LeaderboardResponse
	if err := decodeResponse(resp, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
