package handlers

import (
	"fmt"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/register", "", RegisterRequest{
		Username: "newplayer",
		Password: "hunter22",
	})
	if resp.StatusCode != 201 {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["token"] == nil || body["token"] == "" {
		t.Error("register response missing token")
	}

	// Duplicate username.
	resp = doJSON(t, app, "POST", "/api/auth/register", "", RegisterRequest{
		Username: "newplayer",
		Password: "different1",
	})
	if resp.StatusCode != 409 {
		t.Errorf("duplicate register status = %d, want 409", resp.StatusCode)
	}

	// Wrong password.
	resp = doJSON(t, app, "POST", "/api/auth/login", "", LoginRequest{
		Username: "newplayer",
		Password: "wrongwrong",
	})
	if resp.StatusCode != 401 {
		t.Errorf("bad login status = %d, want 401", resp.StatusCode)
	}

	// Correct credentials.
	resp = doJSON(t, app, "POST", "/api/auth/login", "", LoginRequest{
		Username: "newplayer",
		Password: "hunter22",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	user := body["user"].(map[string]interface{})
	if user["username"] != "newplayer" {
		t.Errorf("username = %v", user["username"])
	}
}

func TestRegisterValidation(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing password", RegisterRequest{Username: "someone"}},
		{"short username", RegisterRequest{Username: "ab", Password: "longenough"}},
		{"short password", RegisterRequest{Username: "someone", Password: "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, "POST", "/api/auth/register", "", tt.req)
			if resp.StatusCode != 400 {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGuestLogin(t *testing.T) {
	app, db := setupTestApp(t)

	resp := doJSON(t, app, "POST", "/api/auth/guest", "", GuestLoginRequest{})
	if resp.StatusCode != 200 {
		t.Fatalf("guest login status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["token"] == nil {
		t.Error("guest login missing token")
	}
	user := body["user"].(map[string]interface{})
	if user["is_guest"] != true {
		t.Error("guest user not flagged as guest")
	}

	// The guest token works on protected routes.
	hunt, _ := seedHunt(t, db)
	token := body["token"].(string)
	resp = doJSON(t, app, "POST", "/api/hunts/"+itoa(hunt.ID)+"/join", token, nil)
	if resp.StatusCode != 201 {
		t.Errorf("guest join status = %d, want 201", resp.StatusCode)
	}
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}
