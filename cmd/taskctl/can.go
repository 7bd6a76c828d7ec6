package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"taskhub-api/internal/service"
	"taskhub-api/pkg/rbac"

	"github.com/spf13/cobra"
)

var (
	canURL   string
	canToken string
	canAny   bool
)

var canCmd = &cobra.Command{
	Use:   "can <permission-key>...",
	Short: "Check the signed-in user's permissions like a client would",
	Long: `Fetches the session from GET /api/v1/auth/me and evaluates the given
keys against its permission map. All keys must pass unless --any is set.
Exits with status 1 when the check fails.

Examples:
  taskctl can tasks.create --token $TOKEN
  taskctl can --any roles.update_roles roles.delete_roles --url https://taskhub.internal`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCan,
}

func init() {
	canCmd.Flags().StringVar(&canURL, "url", "http://localhost:3000", "API base URL")
	canCmd.Flags().StringVar(&canToken, "token", os.Getenv("TASKHUB_TOKEN"), "bearer token (default $TASKHUB_TOKEN)")
	canCmd.Flags().BoolVar(&canAny, "any", false, "pass when at least one key is granted")
}

func runCan(cmd *cobra.Command, keys []string) error {
	if canToken == "" {
		return fmt.Errorf("a token is required (--token or TASKHUB_TOKEN)")
	}

	session, err := fetchSession(cmd.Context(), http.DefaultClient, canURL, canToken)
	if err != nil {
		return err
	}

	grants := session.User.Permissions
	for _, k := range keys {
		cmd.Printf("%-30s %t\n", k, rbac.Check(grants, k))
	}

	if !evaluate(grants, keys, canAny) {
		return fmt.Errorf("%s (%s) is not allowed", session.User.Email, session.User.Role)
	}
	return nil
}

func evaluate(grants rbac.Grants, keys []string, anyOf bool) bool {
	if anyOf {
		return rbac.CheckAny(grants, keys)
	}
	return rbac.CheckAll(grants, keys)
}

func fetchSession(ctx context.Context, client *http.Client, baseURL, token string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/api/v1/auth/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, fmt.Errorf("fetch session: %s: %s", resp.Status, body.Error)
	}

	var session service.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
