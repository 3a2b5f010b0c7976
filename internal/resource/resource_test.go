package resource

import (
	"context"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boldserve/adminconsole/internal/apperr"
	"github.com/boldserve/adminconsole/internal/domain"
)

func validPayload() domain.ServicePayload {
	return domain.ServicePayload{
		ProductName: "Gel Pen",
		Category:    "Office Stationaries",
		SubCategory: "Pen & Pencil Kits",
		Price:       500,
		Description: "Blue ink",
		IsAvailable: true,
	}
}

func TestCreateThenListRoundTrip(t *testing.T) {
	fb := &fakeBackend{}
	c, _ := newTestClient(t, fb, "tok")
	ctx := context.Background()

	created, err := c.CreateService(ctx, validPayload())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 500.0, created.Price)

	items, err := c.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Gel Pen", items[0].Name)
	assert.Equal(t, 500.0, items[0].Price)
	assert.Equal(t, "Bearer tok", fb.lastAuth)
}

func TestCreateServiceValidation(t *testing.T) {
	fb := &fakeBackend{}
	c, _ := newTestClient(t, fb, "tok")

	p := validPayload()
	p.Price = -3
	_, err := c.CreateService(context.Background(), p)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "Price must be a valid non-negative number")
	assert.Empty(t, fb.products)
}

func TestCreateServiceRejectsNonFiniteNumbers(t *testing.T) {
	tests := []struct {
		name string
		set  func(*domain.ServicePayload)
		want string
	}{
		{"price", func(p *domain.ServicePayload) { p.Price = math.Inf(1) }, "Price must be a valid non-negative number"},
		{"rating", func(p *domain.ServicePayload) { p.Rating = math.NaN() }, "Rating must be between 0 and 5"},
		{"duration", func(p *domain.ServicePayload) { p.Duration = math.NaN() }, "Duration must be a valid non-negative number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{}
			c, _ := newTestClient(t, fb, "tok")
			p := validPayload()
			tt.set(&p)

			_, err := c.CreateService(context.Background(), p)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{tt.want}, verr.Fields)
			assert.False(t, apperr.Is(err, apperr.KindMalformedResponse))
			assert.Empty(t, fb.products)
		})
	}
}

func TestCreateServiceReplyWithoutRecord(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Service created"}`))
	}), "tok")

	p, err := c.CreateService(context.Background(), validPayload())
	require.NoError(t, err)
	assert.Equal(t, "Gel Pen", p.Name)
	assert.Empty(t, p.ID)
}

func TestListProductsFilter(t *testing.T) {
	fb := &fakeBackend{products: []map[string]interface{}{
		{"_id": "a", "productName": "Pen", "category": "Office Stationaries", "subCategory": "Pen & Pencil Kits"},
		{"_id": "b", "productName": "Glue", "category": "Office Stationaries", "subCategory": "Adhesive & Glue"},
		{"_id": "c", "productName": "Sofa clean", "category": "Cleaning"},
	}}
	c, _ := newTestClient(t, fb, "tok")

	items, err := c.ListProducts(context.Background(), ProductFilter{Category: "office stationaries"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = c.ListProducts(context.Background(), ProductFilter{Category: "Office Stationaries", SubCategory: "Adhesive & Glue"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
}

func TestDeleteProduct(t *testing.T) {
	fb := &fakeBackend{products: []map[string]interface{}{{"_id": "a"}, {"_id": "b"}}}
	c, _ := newTestClient(t, fb, "tok")
	ctx := context.Background()

	require.NoError(t, c.DeleteProduct(ctx, "a"))
	assert.Len(t, fb.products, 1)

	err := c.DeleteProduct(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
	assert.Equal(t, "Service not found", apperr.Message(err, "x"))

	assert.Error(t, c.DeleteProduct(ctx, ""))
}

func TestUnauthorizedClearsSession(t *testing.T) {
	fb := &fakeBackend{failNext: http.StatusUnauthorized}
	c, mgr := newTestClient(t, fb, "tok")
	resets := 0
	require.NoError(t, mgr.OnUnauthorized(func() { resets++ }))

	_, err := c.ListProducts(context.Background(), ProductFilter{})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.False(t, mgr.HasToken())
	assert.Equal(t, 1, resets)
}

func TestListUsersSkipsBearer(t *testing.T) {
	var auth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[{"_id":"u1","fullName":"Asha","email":"a@x.io","mobile":"98"}]}`))
	}), "tok")

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Asha", users[0].FullName)
	assert.Empty(t, auth)
}

func TestListOrdersStatusAndPath(t *testing.T) {
	var path, status string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		status = r.URL.Query().Get("status")
		w.Write([]byte(`[{"_id":"o1","status":"accepted"},{"_id":"o2","status":"cancelled"}]`))
	}), "tok")

	orders, err := c.ListOrders(context.Background(), "accepted")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, "/api/orders", path)
	assert.Equal(t, "accepted", status)

	c.ordersPath = "/orders"
	_, err = c.ListOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "/orders", path)
	assert.Empty(t, status)
}

func TestListMalformed(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"foo":1}`))
	}), "tok")

	_, err := c.ListOrders(context.Background(), "")
	assert.True(t, apperr.Is(err, apperr.KindMalformedResponse))
}

func TestListCategoriesFallback(t *testing.T) {
	c, _ := newTestClient(t, &fakeBackend{}, "tok")
	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Office Stationaries", cats[0].Name)

	c, _ = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"category":"Cleaning","subCategories":["Sofa","Carpet"]}]}`))
	}), "tok")
	cats, err = c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Cleaning", cats[0].Name)
	assert.Equal(t, []string{"Sofa", "Carpet"}, cats[0].SubCategories)
}

func TestListCategoriesSharesConcurrentFetch(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Write([]byte(`{"success":true,"data":[{"category":"Cleaning","subCategories":["Sofa"]}]}`))
	}), "tok")

	var wg sync.WaitGroup
	results := make([][]Category, 3)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.ListCategories(context.Background())
		}()
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	for _, cats := range results {
		require.Len(t, cats, 1)
		assert.Equal(t, "Cleaning", cats[0].Name)
	}
}

func TestBackendLogin(t *testing.T) {
	var gotBody map[string]interface{}
	c, mgr := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		if gotBody["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Wrong password"}`))
			return
		}
		w.Write([]byte(`{"success":true,"token":"jwt-1"}`))
	}), "")

	_, err := c.Login(context.Background(), Credentials{UserID: "Admin", Password: "wrong"})
	require.Error(t, err)
	assert.False(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, "Wrong password", apperr.Message(err, "x"))
	assert.False(t, mgr.HasToken())

	token, err := c.Login(context.Background(), Credentials{UserID: "Admin", Password: "right"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", token)
	assert.Equal(t, "jwt-1", mgr.Token())
	assert.Equal(t, "Admin", gotBody["userId"])

	require.NoError(t, c.Logout(context.Background()))
	assert.False(t, mgr.HasToken())
}

func TestBackendLoginWrongPasswordKeepsCurrentSession(t *testing.T) {
	c, mgr := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"Wrong password"}`))
	}), "current-token")

	_, err := c.Login(context.Background(), Credentials{UserID: "Admin", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "current-token", mgr.Token())
}

func TestBackendLoginSuccessFalse(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}), "")
	_, err := c.Login(context.Background(), Credentials{UserID: "a", Password: "b"})
	assert.Equal(t, InvalidCredentialsMessage, apperr.Message(err, "x"))
}

func TestVerifyToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	}), "tok")
	assert.NoError(t, c.VerifyToken(context.Background()))

	c, _ = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"revoked"}`))
	}), "tok")
	assert.Equal(t, "revoked", apperr.Message(c.VerifyToken(context.Background()), "x"))
}

func TestStaticAuthenticator(t *testing.T) {
	a := NewStaticAuthenticator("Admin", "Admin123", "secret")
	a.now = func() time.Time { return time.Unix(1700000000, 0) }

	_, err := a.Authenticate(context.Background(), Credentials{UserID: "Admin", Password: "nope"})
	assert.Equal(t, InvalidCredentialsMessage, apperr.Message(err, "x"))

	token, err := a.Authenticate(context.Background(), Credentials{UserID: "Admin", Password: "Admin123"})
	require.NoError(t, err)

	id := ParseIdentity(token)
	assert.False(t, id.Opaque)
	assert.Equal(t, "Admin", id.Name)
	assert.Equal(t, "admin", id.Role)
	assert.Equal(t, int64(1700000000), id.IssuedAt.Unix())
	assert.Equal(t, int64(1700000000+86400), id.ExpiresAt.Unix())
}

func TestParseIdentityOpaque(t *testing.T) {
	assert.True(t, ParseIdentity("not-a-jwt").Opaque)
}
