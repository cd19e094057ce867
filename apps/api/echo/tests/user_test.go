package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/trezcool/kijani/apps/api/echo"
	"github.com/trezcool/kijani/core/user"
)

func TestUserAPI_Login(t *testing.T) {
	createUser(t, "Awa Diop", "awa", "passW0rd!", []string{user.RoleStudent})

	t.Run("empty body", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		}
		req, rec := newRequest(tt.method, tt.path, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("wrong password", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username": "awa", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		}
		req, rec := newRequest(tt.method, tt.path, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown user", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/login",
			body:     []byte(`{"username": "ghost", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		}
		req, rec := newRequest(tt.method, tt.path, tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", []byte(`{"username": "awa", "password": "passW0rd!"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("login failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling LoginResponse: %v", err)
		}
		if resp.Token == "" {
			t.Error("login returned an empty token")
		}
	})
}

func TestUserAPI_QueryStudents(t *testing.T) {
	student := createUser(t, "Malik Sy", "malik", "passW0rd!", []string{user.RoleStudent})
	teacher := createUser(t, "Mme Ndiaye", "ndiaye", "passW0rd!", []string{user.RoleTeacher})

	t.Run("anonymous", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodGet,
			path:     "/v1/users/students",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		}
		req, rec := newRequest(tt.method, tt.path)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("student denied", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodGet,
			path:     "/v1/users/students",
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		}
		req, rec := newAuthRequest(tt.method, tt.path, getToken(t, student))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("teacher sees students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users/students", getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var students []user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
			t.Fatalf("unmarshalling students: %v", err)
		}
		var found bool
		for _, s := range students {
			if s.ID == student.ID {
				found = true
			}
			if s.IsTeacher() || s.IsAdmin() {
				t.Errorf("non-student %s in students listing", s.Username)
			}
		}
		if !found {
			t.Errorf("student %s missing from listing", student.Username)
		}
	})
}

func TestUserAPI_Register(t *testing.T) {
	teacher := createUser(t, "M Ba", "ba", "passW0rd!", []string{user.RoleTeacher})
	admin := createUser(t, "Root", "root", "passW0rd!", []string{user.RoleAdmin})

	body := marchallObj(t, user.NewUser{
		Name:     "Fatou Fall",
		Username: "fatou",
		Email:    "fatou@kijani.test",
		Password: "passW0rd!",
		Roles:    []string{user.RoleStudent},
	})

	t.Run("teacher denied", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     body,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		}
		req, rec := newAuthRequest(tt.method, tt.path, getToken(t, teacher), tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin creates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var usr user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling user: %v", err)
		}
		if usr.Username != "fatou" || !usr.IsStudent() {
			t.Errorf("unexpected user created: %+v", usr)
		}
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/v1/users/register",
			body:     body,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUserExists.Error()}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, getToken(t, admin), tt.body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
