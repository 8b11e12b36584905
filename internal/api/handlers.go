package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

type initiateCallRequest struct {
	Email       string `json:"email"`
	Customer    string `json:"customer"`
	PhoneNumber string `json:"phone_number"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"service":            "Voice Call API",
		"livekit_configured": s.livekit != nil,
	})
}

func (s *Server) handleInitiateCall(w http.ResponseWriter, r *http.Request) {
	var req initiateCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided")
		return
	}
	if req.Email == "" && req.Customer == "" {
		writeError(w, http.StatusBadRequest, "email or customer is required")
		return
	}
	if req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	if s.livekit == nil {
		writeError(w, http.StatusInternalServerError, "LiveKit credentials not configured")
		return
	}

	profile, err := s.convex.GetCustomerProfile(r.Context(), req.Email, req.Customer)
	if err != nil {
		zap.L().Error("customer lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to look up customer")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "Customer not found or has no invoices")
		return
	}

	identifier := req.Email
	if identifier == "" {
		identifier = req.Customer
	}
	if profile.UnpaidInvoices == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":    false,
			"error":      fmt.Sprintf("Customer %s has no unpaid invoices", identifier),
			"suggestion": "Use /api/customers-to-call to see customers who need calls",
		})
		return
	}

	roomName := roomNameFor(identifier)

	agentToken, err := s.livekit.AgentToken(roomName)
	if err != nil {
		zap.L().Error("failed to create agent token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create call room")
		return
	}

	// Room creation failures are survivable: the agent can create the
	// room on join.
	actualRoom := roomName
	if room, err := s.livekit.CreateRoom(r.Context(), roomName); err != nil {
		zap.L().Warn("room creation failed, using requested name",
			zap.String("room", roomName),
			zap.Error(err))
	} else {
		actualRoom = room.Name
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"room_name":   actualRoom,
		"room_url":    s.lkURL,
		"agent_token": agentToken,
		"message":     "Room created. Connect agent and initiate phone call via telephony service.",
		"customer_profile": map[string]any{
			"customer":       profile.Customer,
			"email":          profile.Email,
			"unpaidInvoices": profile.UnpaidInvoices,
			"unpaidAmount":   profile.UnpaidAmount,
		},
	})
}

func (s *Server) handleCallStatus(w http.ResponseWriter, r *http.Request) {
	roomName := r.URL.Query().Get("room_name")
	if roomName == "" {
		writeError(w, http.StatusBadRequest, "room_name is required")
		return
	}
	if s.livekit == nil {
		writeError(w, http.StatusInternalServerError, "LiveKit credentials not configured")
		return
	}

	rooms, err := s.livekit.ListRooms(r.Context(), []string{roomName})
	if err != nil {
		zap.L().Error("room lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get room status")
		return
	}
	if len(rooms) == 0 {
		writeError(w, http.StatusNotFound, "Room not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"room": map[string]any{
			"name":             rooms[0].Name,
			"num_participants": rooms[0].NumParticipants,
			"creation_time":    rooms[0].CreationTime,
		},
	})
}

func (s *Server) handleCustomersToCall(w http.ResponseWriter, r *http.Request) {
	daysSinceEmail := 3
	if v := r.URL.Query().Get("days_since_email"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days_since_email must be an integer")
			return
		}
		daysSinceEmail = n
	}

	var maxOverdueDays *int
	if v := r.URL.Query().Get("max_overdue_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "max_overdue_days must be an integer")
			return
		}
		maxOverdueDays = &n
	}

	customers, err := s.convex.CustomersNeedingCalls(r.Context(), daysSinceEmail, maxOverdueDays)
	if err != nil {
		zap.L().Error("customer query failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to get customers")
		return
	}

	if len(customers) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"customers": []any{},
			"message":   "No customers found with unpaid invoices",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"customers": customers,
		"count":     len(customers),
	})
}

// roomNameFor derives a LiveKit-safe room name from a customer
// identifier.
func roomNameFor(identifier string) string {
	name := "payment-call-" + identifier
	r := strings.NewReplacer("@", "-", " ", "-", ".", "-")
	return r.Replace(name)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}
