package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hdcn/portal/pkg/audit"
	"github.com/hdcn/portal/pkg/contextkeys"
	"github.com/hdcn/portal/pkg/httputil"
	"github.com/hdcn/portal/pkg/middleware"
	"github.com/hdcn/portal/pkg/permissions"
	"github.com/hdcn/portal/pkg/storage"
)

// listRecords returns the collection filtered to the caller's region scope,
// with fields the caller may not read removed.
func (s *Server) listRecords(collection, function string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := middleware.GetPermissions(r)

		records, err := s.store.List(r.Context(), collection)
		if err != nil {
			s.logger.WithError(err).WithField("collection", collection).Error("List failed")
			httputil.WriteInternalError(w, err)
			return
		}

		visible := make([]map[string]interface{}, 0, len(records))
		for _, rec := range records {
			if !ps.AllowsRecord(function, permissions.ActionRead, rec.Region()) {
				continue
			}
			visible = append(visible, permissions.FilterForRead(ps, function, rec))
		}

		httputil.WriteSuccess(w, map[string]interface{}{
			"items": visible,
			"count": len(visible),
		})
	}
}

// exportRecords behaves like listRecords but requires the export grant and
// keeps every field the caller's tags cover. Kept separate so exports show up
// distinctly in metrics and audit trails.
func (s *Server) exportRecords(collection, function string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := middleware.GetPermissions(r)

		records, err := s.store.List(r.Context(), collection)
		if err != nil {
			s.logger.WithError(err).WithField("collection", collection).Error("Export list failed")
			httputil.WriteInternalError(w, err)
			return
		}

		visible := make([]map[string]interface{}, 0, len(records))
		for _, rec := range records {
			if !ps.AllowsRecord(function, permissions.ActionExport, rec.Region()) {
				continue
			}
			visible = append(visible, permissions.FilterForRead(ps, function, rec))
		}

		httputil.WriteSuccess(w, map[string]interface{}{
			"items": visible,
			"count": len(visible),
		})
	}
}

func (s *Server) getRecord(collection, function string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := middleware.GetPermissions(r)
		id := mux.Vars(r)["id"]

		rec, err := s.store.Get(r.Context(), collection, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httputil.WriteNotFound(w, "record not found")
				return
			}
			s.logger.WithError(err).WithField("collection", collection).Error("Get failed")
			httputil.WriteInternalError(w, err)
			return
		}

		// Out-of-scope records read as absent.
		if !ps.AllowsRecord(function, permissions.ActionRead, rec.Region()) {
			httputil.WriteNotFound(w, "record not found")
			return
		}

		httputil.WriteSuccess(w, permissions.FilterForRead(ps, function, rec))
	}
}

func (s *Server) createRecord(collection, function string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := middleware.GetPermissions(r)

		var body map[string]interface{}
		if !httputil.ParseJSONOrError(w, r, &body) {
			return
		}

		filtered, rejected, err := permissions.FilterForWrite(ps, function, body)
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		if len(rejected) > 0 {
			s.auditEvent(r, audit.EventTypeFieldsRejected, audit.EventStatusDenied, func(e *audit.Event) {
				e.Collection = collection
				e.RejectedFields = rejected
			})
		}

		rec := storage.Record(filtered)
		region := rec.Region()
		if !ps.AllowsRecord(function, permissions.ActionWrite, region) {
			s.writeDenied(w, r, function, permissions.ActionWrite, collection, "", region)
			return
		}

		id := rec.ID()
		if id == "" {
			id = uuid.NewString()
			rec["id"] = id
		}

		if err := s.store.Put(r.Context(), collection, id, rec); err != nil {
			s.logger.WithError(err).WithField("collection", collection).Error("Put failed")
			httputil.WriteInternalError(w, err)
			return
		}

		s.auditEvent(r, audit.EventTypeRecordCreate, audit.EventStatusSuccess, func(e *audit.Event) {
			e.Collection = collection
			e.RecordID = id
			e.Region = region
		})

		httputil.WriteCreated(w, permissions.FilterForRead(ps, function, rec))
	}
}

func (s *Server) patchRecord(collection, function string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := middleware.GetPermissions(r)
		id := mux.Vars(r)["id"]

		var body map[string]interface{}
		if !httputil.ParseJSONOrError(w, r, &body) {
			return
		}

		existing, err := s.store.Get(r.Context(), collection, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httputil.WriteNotFound(w, "record not found")
				return
			}
			s.logger.WithError(err).WithField("collection", collection).Error("Get failed")
			httputil.WriteInternalError(w, err)
			return
		}

		if !ps.AllowsRecord(function, permissions.ActionWrite, existing.Region()) {
			s.writeDenied(w, r, function, permissions.ActionWrite, collection, id, existing.Region())
			return
		}

		filtered, rejected, err := permissions.FilterForWrite(ps, function, body)
		if len(rejected) > 0 {
			s.auditEvent(r, audit.EventTypeFieldsRejected, audit.EventStatusDenied, func(e *audit.Event) {
				e.Collection = collection
				e.RecordID = id
				e.RejectedFields = rejected
			})
		}
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}

		// The record's id and region are not patchable through this route.
		delete(filtered, "id")
		delete(filtered, "region")
		if len(filtered) == 0 {
			httputil.WriteBadRequest(w, permissions.ErrNothingToUpdate.Error())
			return
		}

		updated, err := s.store.Update(r.Context(), collection, id, storage.Record(filtered))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httputil.WriteNotFound(w, "record not found")
				return
			}
			s.logger.WithError(err).WithField("collection", collection).Error("Update failed")
			httputil.WriteInternalError(w, err)
			return
		}

		s.auditEvent(r, audit.EventTypeRecordUpdate, audit.EventStatusSuccess, func(e *audit.Event) {
			e.Collection = collection
			e.RecordID = id
			e.Region = updated.Region()
		})

		httputil.WriteSuccess(w, permissions.FilterForRead(ps, function, updated))
	}
}

func (s *Server) deleteRecord(collection, function string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := middleware.GetPermissions(r)
		id := mux.Vars(r)["id"]

		existing, err := s.store.Get(r.Context(), collection, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httputil.WriteNotFound(w, "record not found")
				return
			}
			s.logger.WithError(err).WithField("collection", collection).Error("Get failed")
			httputil.WriteInternalError(w, err)
			return
		}

		if !ps.AllowsRecord(function, permissions.ActionWrite, existing.Region()) {
			s.writeDenied(w, r, function, permissions.ActionWrite, collection, id, existing.Region())
			return
		}

		if err := s.store.Delete(r.Context(), collection, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				httputil.WriteNotFound(w, "record not found")
				return
			}
			s.logger.WithError(err).WithField("collection", collection).Error("Delete failed")
			httputil.WriteInternalError(w, err)
			return
		}

		s.auditEvent(r, audit.EventTypeRecordDelete, audit.EventStatusSuccess, func(e *audit.Event) {
			e.Collection = collection
			e.RecordID = id
			e.Region = existing.Region()
		})

		httputil.WriteNoContent(w)
	}
}

// getSessionPermissions returns the caller's resolved permission set. The
// portal UI uses it to hide controls; the server re-checks every request
// regardless.
func (s *Server) getSessionPermissions(w http.ResponseWriter, r *http.Request) {
	ps := middleware.GetPermissions(r)
	httputil.WriteSuccess(w, ps)
}

// writeDenied records a record-level denial and answers 403. Routing-level
// denials are handled by auditDenials instead.
func (s *Server) writeDenied(w http.ResponseWriter, r *http.Request, function string, action permissions.Action, collection, recordID, region string) {
	if s.metrics != nil {
		s.metrics.ObservePermissionCheck(function, string(action), false)
	}
	s.auditEvent(r, audit.EventTypeAccessDenied, audit.EventStatusDenied, func(e *audit.Event) {
		e.Function = function
		e.Action = string(action)
		e.Collection = collection
		e.RecordID = recordID
		e.Region = region
	})
	httputil.WriteForbidden(w, "requires a role granting "+function+":"+string(action)+" for this region")
}

// auditDenials records 403 responses produced by the permission gate itself.
// Record-level denials inside handlers audit themselves via writeDenied, so
// the wrapper only fires when the gate stopped the request before the handler
// ran.
func (s *Server) auditDenials(function string, action permissions.Action, gated http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan := false
		ctx := context.WithValue(r.Context(), handlerRanKey{}, &handlerRan)
		rec := &statusCapture{ResponseWriter: w, status: http.StatusOK}
		gated.ServeHTTP(rec, r.WithContext(ctx))
		if rec.status == http.StatusForbidden && !handlerRan {
			s.auditEvent(r, audit.EventTypeAccessDenied, audit.EventStatusDenied, func(e *audit.Event) {
				e.Function = function
				e.Action = string(action)
			})
		}
	})
}

type handlerRanKey struct{}

func markHandlerRan(r *http.Request) {
	if ran, ok := r.Context().Value(handlerRanKey{}).(*bool); ok {
		*ran = true
	}
}

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (c *statusCapture) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

// auditEvent fills actor and request context from the request before logging.
func (s *Server) auditEvent(r *http.Request, eventType audit.EventType, status audit.EventStatus, fill func(*audit.Event)) {
	event := audit.NewEvent(eventType, status)

	if id := middleware.GetIdentity(r); id != nil {
		event.Subject = id.Subject
		event.Email = id.Email
	}
	event.PrimaryRole = middleware.GetPermissions(r).PrimaryRole()
	event.RequestID = contextkeys.RequestIDFrom(r.Context())
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		event.IPAddress = host
	} else {
		event.IPAddress = r.RemoteAddr
	}

	fill(event)

	// Audit failures must not fail the request.
	if err := s.audit.Log(context.WithoutCancel(r.Context()), event); err != nil {
		s.logger.WithError(err).WithField("event_type", string(eventType)).Error("Audit log write failed")
	}
}
