package tests

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core/user"
	testutil "github.com/trezcool/kazi/tests"
)

func Test_userApi_login(t *testing.T) {
	ta := setup(t)

	testutil.CreateUser(t, ta.usrRepo, "Alice", "alice", "alice@test.cd", "Str0ng!pwd", user.RoleMember)

	tests := []httpTest{
		{
			name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: envelope(t, http.StatusBadRequest, "invalid input", map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "nope", Password: "Str0ng!pwd"}),
			wantCode: http.StatusBadRequest, wantData: errEnvelope(http.StatusBadRequest, "authentication failed"),
		},
		{
			name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: "alice", Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: errEnvelope(http.StatusBadRequest, "authentication failed"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login successful", func(t *testing.T) {
		body := marchallObj(t, echoapi.LoginRequest{Username: "alice", Password: "Str0ng!pwd"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		ta.app.ServeHTTP(rec, req)

		var data echoapi.LoginResponse
		env := decodeData(t, rec, &data)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if env.Message != "login successful" {
			t.Errorf("message = %q", env.Message)
		}
		if data.Token == "" {
			t.Error("no token returned")
		}
	})
}

func Test_userApi_permissions(t *testing.T) {
	ta := setup(t)

	alice := testutil.CreateUser(t, ta.usrRepo, "Alice", "alice", "alice@test.cd", "", user.RoleMember)
	bob := testutil.CreateUser(t, ta.usrRepo, "Bob", "bob", "bob@test.cd", "", user.RoleMember)
	chair := testutil.CreateUser(t, ta.usrRepo, "Chair", "chair", "chair@test.cd", "", user.RoleChair)

	aliceToken := getToken(t, alice)
	chairToken := getToken(t, chair)

	newUser := marchallObj(t, user.NewUser{
		Username: "carol", Name: "Carol", Role: user.RoleMember,
		Password: "G00d!pass", PasswordConfirm: "G00d!pass",
	})

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodGet, path: "/v1/users",
			wantCode: http.StatusUnauthorized, wantData: errMissingToken,
		},
		{
			name: "create requires elevated permission", method: http.MethodPost, path: "/v1/users", body: newUser,
			token: aliceToken, wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "any member can read the member list", method: http.MethodGet, path: "/v1/users", token: aliceToken,
			wantCode: http.StatusOK, wantData: envelope(t, http.StatusOK, "members", []user.User{alice, bob, chair}),
		},
		{
			name: "member can retrieve self", method: http.MethodGet, path: fmt.Sprintf("/v1/users/%d", alice.ID),
			token: aliceToken, wantCode: http.StatusOK, wantData: envelope(t, http.StatusOK, "member", alice),
		},
		{
			name: "member cannot retrieve others", method: http.MethodGet, path: fmt.Sprintf("/v1/users/%d", bob.ID),
			token: aliceToken, wantCode: http.StatusNotFound, wantData: errEnvelope(http.StatusNotFound, "not found"),
		},
		{
			name: "elevated can retrieve others", method: http.MethodGet, path: fmt.Sprintf("/v1/users/%d", bob.ID),
			token: chairToken, wantCode: http.StatusOK, wantData: envelope(t, http.StatusOK, "member", bob),
		},
		{
			name: "member cannot change own role", method: http.MethodPut, path: fmt.Sprintf("/v1/users/%d", alice.ID),
			body:  marchallObj(t, user.UpdateUser{Role: user.RoleChair}),
			token: aliceToken, wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "destroy requires elevated permission", method: http.MethodDelete, path: fmt.Sprintf("/v1/users/%d", alice.ID),
			token: aliceToken, wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "no self-delete", method: http.MethodDelete, path: fmt.Sprintf("/v1/users/%d", chair.ID),
			token: chairToken, wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "no self-delete (bulk)", method: http.MethodDelete,
			path:  fmt.Sprintf("/v1/users?id=%d&id=%d", alice.ID, chair.ID),
			token: chairToken, wantCode: http.StatusForbidden, wantData: errForbidden,
		},
		{
			name: "roles", method: http.MethodGet, path: "/v1/users/roles", token: aliceToken,
			wantCode: http.StatusOK, wantData: envelope(t, http.StatusOK, "roles", user.Roles),
		},
		{
			name: "elevated can destroy", method: http.MethodDelete, path: fmt.Sprintf("/v1/users/%d", bob.ID),
			token: chairToken, wantCode: http.StatusOK, wantData: errEnvelope(http.StatusOK, "member deleted"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	ta := setup(t)

	chair := testutil.CreateUser(t, ta.usrRepo, "Chair", "chair", "chair@test.cd", "", user.RoleChair)
	chairToken := getToken(t, chair)

	body := marchallObj(t, user.NewUser{
		Username: "carol", Name: "Carol", Email: "carol@test.cd", Role: user.RoleMember,
		Password: "G00d!pass", PasswordConfirm: "G00d!pass",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/users", chairToken, body)
	ta.app.ServeHTTP(rec, req)

	var usr user.User
	env := decodeData(t, rec, &usr)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if env.Message != "member created" {
		t.Errorf("message = %q", env.Message)
	}
	if usr.ID == 0 || usr.Username != "carol" || usr.Role != user.RoleMember {
		t.Errorf("unexpected user: %+v", usr)
	}

	// username is taken now
	req, rec = newAuthRequest(http.MethodPost, "/v1/users", chairToken, body)
	ta.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: envelope(t, http.StatusBadRequest, "invalid input", map[string]string{
			"username": "a user with this username already exists",
		}),
	}, rec)
}

func Test_userApi_refreshToken(t *testing.T) {
	ta := setup(t)

	alice := testutil.CreateUser(t, ta.usrRepo, "Alice", "alice", "alice@test.cd", "", user.RoleMember)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   strconv.Itoa(alice.ID),
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     alice.Username,
		Role:         alice.Role,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims, conf)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: errMissingToken},
		{
			name: "refresh period expired", token: unrefreshableToken,
			wantCode: http.StatusForbidden, wantData: errEnvelope(http.StatusForbidden, "refresh has expired"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			ta.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("token refreshed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", getToken(t, alice))
		ta.app.ServeHTTP(rec, req)

		var data echoapi.LoginResponse
		env := decodeData(t, rec, &data)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if env.Message != "token refreshed" || data.Token == "" {
			t.Errorf("unexpected response: %s", rec.Body.String())
		}
	})
}
