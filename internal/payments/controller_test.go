package payments

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/shared/testutil"
)

type paymentPage struct {
	Items []Payment `json:"items"`
	Total int       `json:"total"`
}

func newPaymentsEnv(t *testing.T) (*testutil.Env, *gin.Engine, string, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	engine := testutil.Engine()
	NewRouter(NewController(NewService(env.Gateway)), env.Auth()).
		SetupRoutes(engine.Group("/api/v1"))
	sess, token := env.Login(t)
	return env, engine, token, sess.Snapshot().User.Identifier()
}

func listPayments(t *testing.T, engine *gin.Engine, token string) paymentPage {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/payment/read-all?limit=100", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page paymentPage
	testutil.DecodeData(t, w, &page)
	return page
}

func TestUserRef_AcceptsIDOrObject(t *testing.T) {
	var p Payment
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","userId":"u1","amount":10}`), &p))
	assert.Equal(t, "u1", p.User.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","userId":{"_id":"u2","fullName":"Ada Lovelace"},"amount":10}`), &p))
	assert.Equal(t, "u2", p.User.ID)
	assert.Equal(t, "Ada Lovelace", p.User.FullName)
	assert.Equal(t, "$10.00", p.DisplayAmount())

	p = Payment{}
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p2","userId":{"id":"u9","firstName":"Ada","lastName":"Lovelace","email":"a@x.io"},"amount":"2000"}`), &p))
	require.NotNil(t, p.User)
	assert.Equal(t, "u9", p.User.ID)
	assert.Equal(t, "Ada Lovelace", p.User.DisplayName())
	assert.Equal(t, "a@x.io", p.User.Email)

	raw, err := json.Marshal(p.User)
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"u9","firstName":"Ada","lastName":"Lovelace","fullName":"Ada Lovelace","email":"a@x.io"}`, string(raw))
}

func TestCreatePayment(t *testing.T) {
	env, engine, token, adminID := newPaymentsEnv(t)

	t.Run("missing amount is rejected locally", func(t *testing.T) {
		w := testutil.Do(engine, http.MethodPost, "/api/v1/payment/create", token, gin.H{"gateway": "PayPal"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, env.Mock.Hits(http.MethodPost, "/api/v1/payment/create"))
	})

	t.Run("unknown gateway is rejected locally", func(t *testing.T) {
		w := testutil.Do(engine, http.MethodPost, "/api/v1/payment/create", token, gin.H{"gateway": "Cash", "amount": 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, env.Mock.Hits(http.MethodPost, "/api/v1/payment/create"))
	})

	t.Run("string amount is sent as a number", func(t *testing.T) {
		before := listPayments(t, engine, token)

		w := testutil.Do(engine, http.MethodPost, "/api/v1/payment/create", token, gin.H{
			"userId":        adminID,
			"amount":        "2000",
			"transactionId": "TX-1",
			"gateway":       "Bank",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created Payment
		testutil.DecodeData(t, w, &created)
		assert.Equal(t, 2000.0, created.Amount.Float64())
		require.NotNil(t, created.User)
		assert.Equal(t, env.Mock.AdminEmail(), created.User.Email)

		after := listPayments(t, engine, token)
		assert.Equal(t, before.Total+1, after.Total)
		assert.Equal(t, "TX-1", after.Items[0].TransactionID)
	})

	t.Run("display amount is parsed", func(t *testing.T) {
		w := testutil.Do(engine, http.MethodPost, "/api/v1/payment/create", token, gin.H{"amount": "$1,250.50", "gateway": "PayPal"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created Payment
		testutil.DecodeData(t, w, &created)
		assert.Equal(t, 1250.5, created.Amount.Float64())
	})
}

func TestUpdateAndDeletePayment(t *testing.T) {
	_, engine, token, _ := newPaymentsEnv(t)
	target := listPayments(t, engine, token).Items[0]
	id := target.Identifier()

	w := testutil.Do(engine, http.MethodPatch, "/api/v1/payment/update/"+id, token, gin.H{
		"amount":  99.999,
		"gateway": target.Gateway,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated Payment
	testutil.DecodeData(t, w, &updated)
	assert.Equal(t, 100.0, updated.Amount.Float64())

	w = testutil.Do(engine, http.MethodDelete, "/api/v1/payment/delete/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, p := range listPayments(t, engine, token).Items {
		assert.NotEqual(t, id, p.Identifier())
	}
}
