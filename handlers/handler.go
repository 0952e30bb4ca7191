package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/cafeteria/metrics"
	"github.com/ray-remotestate/cafeteria/models"
	"github.com/ray-remotestate/cafeteria/services"
)

type SessionConfig struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
}

// Handler holds what the routes need; everything is injected at startup.
type Handler struct {
	DB            *sql.DB
	Orders        *services.OrderService
	AdminRequests *services.AdminRequestService
	Metrics       *metrics.Metrics
	Session       SessionConfig
}

// decodeBody reads a JSON body into v. An empty body leaves v zeroed, the
// field checks of each handler decide whether that is acceptable.
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return models.InvalidRequest("invalid request")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, models.InvalidRequest("invalid id")
	}
	return id, nil
}
