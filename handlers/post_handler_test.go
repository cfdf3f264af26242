package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/minnehack2026-blugolds/backend/internal/testutil"
	"github.com/minnehack2026-blugolds/backend/models"
)

type postDTO struct {
	ID         uint     `json:"id"`
	SellerID   *uint    `json:"seller_id"`
	Title      string   `json:"title"`
	PriceCents int64    `json:"price_cents"`
	Status     string   `json:"status"`
	Latitude   *float64 `json:"latitude"`
}

type postPage struct {
	Success bool                  `json:"success"`
	Data    []postDTO             `json:"data"`
	Meta    models.PaginationMeta `json:"meta"`
}

func (s *testServer) createPost(t *testing.T, user uint, body map[string]interface{}) postDTO {
	t.Helper()
	r := s.request(http.MethodPost, "/posts", body, user)
	expectStatus(t, r, http.StatusCreated)
	var p postDTO
	r.decode(t, &p)
	return p
}

func TestPosts_CRUD(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, seller, "seller@example.edu")
	testutil.CreateUser(t, s.db, buyer, "buyer@example.edu")

	lamp := s.createPost(t, seller, map[string]interface{}{"title": " Desk lamp ", "price_cents": 1500})
	if lamp.Title != "Desk lamp" || lamp.SellerID == nil || *lamp.SellerID != seller || lamp.Status != models.PostStatusActive {
		t.Fatalf("created post = %+v", lamp)
	}

	invalid := []struct {
		name   string
		body   map[string]interface{}
		user   uint
		status int
	}{
		{name: "anonymous", body: map[string]interface{}{"title": "x", "price_cents": 1}, status: http.StatusUnauthorized},
		{name: "no price", body: map[string]interface{}{"title": "x"}, user: seller, status: http.StatusUnprocessableEntity},
		{name: "negative price", body: map[string]interface{}{"title": "x", "price_cents": -1}, user: seller, status: http.StatusUnprocessableEntity},
		{name: "blank title", body: map[string]interface{}{"title": "  ", "price_cents": 1}, user: seller, status: http.StatusUnprocessableEntity},
		{name: "half a location", body: map[string]interface{}{"title": "x", "price_cents": 1, "latitude": 44.9}, user: seller, status: http.StatusUnprocessableEntity},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, s.request(http.MethodPost, "/posts", tt.body, tt.user), tt.status)
		})
	}

	path := "/posts/" + itoa(lamp.ID)
	expectStatus(t, s.request(http.MethodGet, path, nil, 0), http.StatusOK)
	expectStatus(t, s.request(http.MethodPatch, path, map[string]interface{}{"price_cents": 900}, buyer), http.StatusForbidden)
	expectStatus(t, s.request(http.MethodPatch, path, map[string]interface{}{"status": "sold"}, seller), http.StatusUnprocessableEntity)
	expectStatus(t, s.request(http.MethodPatch, path, map[string]interface{}{"latitude": 44.97}, seller), http.StatusUnprocessableEntity)

	r := s.request(http.MethodPatch, path, map[string]interface{}{"price_cents": 900}, seller)
	expectStatus(t, r, http.StatusOK)
	var updated postDTO
	r.decode(t, &updated)
	if updated.PriceCents != 900 || updated.Title != "Desk lamp" {
		t.Errorf("updated post = %+v", updated)
	}

	r = s.request(http.MethodGet, "/posts/mine", nil, seller)
	expectStatus(t, r, http.StatusOK)
	var mine []postDTO
	r.decode(t, &mine)
	if len(mine) != 1 {
		t.Errorf("mine len = %d, want 1", len(mine))
	}

	expectStatus(t, s.request(http.MethodDelete, path, nil, buyer), http.StatusForbidden)
	expectStatus(t, s.request(http.MethodDelete, path, nil, seller), http.StatusOK)
	expectStatus(t, s.request(http.MethodGet, path, nil, 0), http.StatusNotFound)
	expectStatus(t, s.request(http.MethodGet, "/posts/abc", nil, 0), http.StatusBadRequest)

	var stored models.Post
	s.db.First(&stored, lamp.ID)
	if stored.Status != models.PostStatusDeleted {
		t.Errorf("stored status = %q, want deleted", stored.Status)
	}
}

func TestPosts_ListFilters(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, seller, "seller@example.edu")
	testutil.CreateUser(t, s.db, buyer, "buyer@example.edu")

	// Near UMN Twin Cities, near UMN Duluth, and one with no location.
	s.createPost(t, seller, map[string]interface{}{"title": "Bike", "price_cents": 5000, "latitude": 44.974, "longitude": -93.2277})
	s.createPost(t, seller, map[string]interface{}{"title": "Skis", "price_cents": 12000, "latitude": 46.8182, "longitude": -92.0848})
	s.createPost(t, buyer, map[string]interface{}{"title": "Textbook", "price_cents": 2500})

	list := func(query string) postPage {
		t.Helper()
		r := s.request(http.MethodGet, "/posts"+query, nil, 0)
		expectStatus(t, r, http.StatusOK)
		var page postPage
		r.decode(t, &page)
		return page
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"Textbook", "Skis", "Bike"}},
		{query: "?min_price=3000", want: []string{"Skis", "Bike"}},
		{query: "?max_price=5000", want: []string{"Textbook", "Bike"}},
		{query: "?seller_id=" + itoa(buyer), want: []string{"Textbook"}},
		{query: "?latitude=44.97&longitude=-93.23", want: []string{"Bike"}},
		{query: "?latitude=44.97&longitude=-93.23&radius_miles=200", want: []string{"Skis", "Bike"}},
		{query: "?limit=2&page=2", want: []string{"Bike"}},
	}
	for _, tt := range tests {
		t.Run("list"+tt.query, func(t *testing.T) {
			page := list(tt.query)
			if len(page.Data) != len(tt.want) {
				t.Fatalf("got %d posts, want %v", len(page.Data), tt.want)
			}
			for i, p := range page.Data {
				if p.Title != tt.want[i] {
					t.Errorf("post %d = %q, want %q", i, p.Title, tt.want[i])
				}
			}
		})
	}

	page := list("?limit=2")
	if page.Meta.Total != 3 || page.Meta.TotalPages != 2 || !page.Meta.HasNext {
		t.Errorf("meta = %+v", page.Meta)
	}

	expectStatus(t, s.request(http.MethodGet, "/posts?min_price=cheap", nil, 0), http.StatusBadRequest)

	for _, query := range []string{
		"?page=100000000000000000&limit=100",
		"?latitude=44.8&longitude=-91.5&page=100000000000000000&limit=100",
	} {
		t.Run("huge page"+query, func(t *testing.T) {
			expectStatus(t, s.request(http.MethodGet, "/posts"+query, nil, 0), http.StatusBadRequest)
		})
	}

	if page := list("?latitude=44.97&longitude=-93.23&page=50"); len(page.Data) != 0 {
		t.Errorf("page past the end = %+v, want empty", page.Data)
	}
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, seller, "seller@example.edu")
	token, _ := s.tokens.Generate(seller)

	upload := func(filename string) response {
		t.Helper()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		part.Write([]byte("\x89PNG\r\n\x1a\n"))
		w.Close()

		req := httptest.NewRequest(http.MethodPost, "/uploads/images", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return s.send(req)
	}

	r := upload("photo.PNG")
	expectStatus(t, r, http.StatusCreated)
	var out struct {
		URL string `json:"url"`
	}
	r.decode(t, &out)
	if len(out.URL) < len("/uploads/posts/") || out.URL[:len("/uploads/posts/")] != "/uploads/posts/" {
		t.Fatalf("url = %q", out.URL)
	}
	expectStatus(t, s.request(http.MethodGet, out.URL, nil, 0), http.StatusOK)

	expectStatus(t, upload("notes.txt"), http.StatusBadRequest)
}
