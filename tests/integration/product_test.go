//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/v1/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 8 {
		t.Fatalf("expected 8 products, got %d", len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/v1/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var wildflower *productResponse
	for i := range products {
		if products[i].ID == "wildflower-honey-500g" {
			wildflower = &products[i]
			break
		}
	}

	if wildflower == nil {
		t.Fatal("product wildflower-honey-500g not found")
	}
	if wildflower.Name != "Wildflower Honey 500g" {
		t.Errorf("name: got %q, want %q", wildflower.Name, "Wildflower Honey 500g")
	}
	if !wildflower.Price.Equal(mustDecimal(t, "10.00")) {
		t.Errorf("price: got %v, want 10.00", wildflower.Price)
	}
	if wildflower.Category != "honey" {
		t.Errorf("category: got %q, want %q", wildflower.Category, "honey")
	}
	if wildflower.ImageURL == "" {
		t.Error("image_url is empty")
	}
	if !wildflower.IsActive {
		t.Error("product is not active")
	}
}

func TestListProducts_Search(t *testing.T) {
	resp := doGet(t, "/api/v1/products?search=beeswax")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].ID != "beeswax-candle-pair" {
		t.Errorf("id: got %q, want %q", products[0].ID, "beeswax-candle-pair")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/v1/products/clover-honey-500g")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.ID != "clover-honey-500g" {
		t.Errorf("id: got %q, want %q", p.ID, "clover-honey-500g")
	}
	if p.Name != "Clover Honey 500g" {
		t.Errorf("name: got %q, want %q", p.Name, "Clover Honey 500g")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/v1/products/no-such-product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != 404 {
		t.Errorf("error code: got %d, want 404", errResp.Code)
	}
}

func TestCreateProduct_CustomerForbidden(t *testing.T) {
	token := signupAndLogin(t, "product-customer@example.com", "hunter22")

	resp := doPostWithAuth(t, "/api/v1/products", map[string]any{
		"name":  "Forbidden Honey",
		"price": "1.00",
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestProductAdminLifecycle(t *testing.T) {
	token := login(t, adminEmail, adminPassword)

	resp := doPostWithAuth(t, "/api/v1/products", map[string]any{
		"id":             "integration-test-jar",
		"name":           "Integration Test Jar",
		"price":          "3.50",
		"category":       "honey",
		"stock_quantity": 10,
	}, token)
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()
	if !created.IsActive {
		t.Error("created product is not active")
	}

	resp = doRequest(t, http.MethodPatch, "/api/v1/products/integration-test-jar", map[string]any{
		"price": "4.25",
	}, token)
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	updated := decodeJSON[productResponse](t, resp)
	resp.Body.Close()
	if !updated.Price.Equal(mustDecimal(t, "4.25")) {
		t.Errorf("price after patch: got %v, want 4.25", updated.Price)
	}
	if updated.Name != "Integration Test Jar" {
		t.Errorf("name changed by price patch: got %q", updated.Name)
	}

	resp = doRequest(t, http.MethodDelete, "/api/v1/products/integration-test-jar", nil, token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}

	resp = doGet(t, "/api/v1/products/integration-test-jar")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", resp.StatusCode)
	}
}
