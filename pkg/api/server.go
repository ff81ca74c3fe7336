package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hdcn/portal/pkg/audit"
	"github.com/hdcn/portal/pkg/middleware"
	"github.com/hdcn/portal/pkg/observability"
	"github.com/hdcn/portal/pkg/permissions"
	"github.com/hdcn/portal/pkg/storage"
)

// Server represents the portal API server
type Server struct {
	router  *mux.Router
	store   storage.Store
	logger  *observability.Logger
	metrics *observability.Metrics
	audit   audit.Logger
}

// NewServer creates a new API server
func NewServer(store storage.Store, logger *observability.Logger, metrics *observability.Metrics, auditLogger audit.Logger) *Server {
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}
	s := &Server{
		router:  mux.NewRouter(),
		store:   store,
		logger:  logger,
		metrics: metrics,
		audit:   auditLogger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	v1 := s.router.PathPrefix("/v1").Subrouter()

	// Member administration
	s.register(v1, "/members", http.MethodGet,
		permissions.FunctionMembers, permissions.ActionRead,
		s.listRecords(storage.CollectionMembers, permissions.FunctionMembers))
	s.register(v1, "/members", http.MethodPost,
		permissions.FunctionMembers, permissions.ActionWrite,
		s.createRecord(storage.CollectionMembers, permissions.FunctionMembers))
	s.register(v1, "/members/export", http.MethodGet,
		permissions.FunctionMembers, permissions.ActionExport,
		s.exportRecords(storage.CollectionMembers, permissions.FunctionMembers))
	s.register(v1, "/members/{id}", http.MethodGet,
		permissions.FunctionMembers, permissions.ActionRead,
		s.getRecord(storage.CollectionMembers, permissions.FunctionMembers))
	s.register(v1, "/members/{id}", http.MethodPatch,
		permissions.FunctionMembers, permissions.ActionWrite,
		s.patchRecord(storage.CollectionMembers, permissions.FunctionMembers))
	s.register(v1, "/members/{id}", http.MethodDelete,
		permissions.FunctionMembers, permissions.ActionWrite,
		s.deleteRecord(storage.CollectionMembers, permissions.FunctionMembers))

	// Webshop catalog
	s.register(v1, "/webshop/products", http.MethodGet,
		permissions.FunctionWebshop, permissions.ActionRead,
		s.listRecords(storage.CollectionProducts, permissions.FunctionWebshop))
	s.register(v1, "/webshop/products", http.MethodPost,
		permissions.FunctionWebshop, permissions.ActionWrite,
		s.createRecord(storage.CollectionProducts, permissions.FunctionWebshop))
	s.register(v1, "/webshop/products/{id}", http.MethodGet,
		permissions.FunctionWebshop, permissions.ActionRead,
		s.getRecord(storage.CollectionProducts, permissions.FunctionWebshop))
	s.register(v1, "/webshop/products/{id}", http.MethodPatch,
		permissions.FunctionWebshop, permissions.ActionWrite,
		s.patchRecord(storage.CollectionProducts, permissions.FunctionWebshop))
	s.register(v1, "/webshop/products/{id}", http.MethodDelete,
		permissions.FunctionWebshop, permissions.ActionWrite,
		s.deleteRecord(storage.CollectionProducts, permissions.FunctionWebshop))

	// Orders are created by the shop checkout flow, not this API, so only
	// read and export are exposed here.
	s.register(v1, "/webshop/orders", http.MethodGet,
		permissions.FunctionOrders, permissions.ActionRead,
		s.listRecords(storage.CollectionOrders, permissions.FunctionOrders))
	s.register(v1, "/webshop/orders/export", http.MethodGet,
		permissions.FunctionOrders, permissions.ActionExport,
		s.exportRecords(storage.CollectionOrders, permissions.FunctionOrders))
	s.register(v1, "/webshop/orders/{id}", http.MethodGet,
		permissions.FunctionOrders, permissions.ActionRead,
		s.getRecord(storage.CollectionOrders, permissions.FunctionOrders))

	// Event administration
	s.register(v1, "/events", http.MethodGet,
		permissions.FunctionEvents, permissions.ActionRead,
		s.listRecords(storage.CollectionEvents, permissions.FunctionEvents))
	s.register(v1, "/events", http.MethodPost,
		permissions.FunctionEvents, permissions.ActionWrite,
		s.createRecord(storage.CollectionEvents, permissions.FunctionEvents))
	s.register(v1, "/events/{id}", http.MethodGet,
		permissions.FunctionEvents, permissions.ActionRead,
		s.getRecord(storage.CollectionEvents, permissions.FunctionEvents))
	s.register(v1, "/events/{id}", http.MethodPatch,
		permissions.FunctionEvents, permissions.ActionWrite,
		s.patchRecord(storage.CollectionEvents, permissions.FunctionEvents))
	s.register(v1, "/events/{id}", http.MethodDelete,
		permissions.FunctionEvents, permissions.ActionWrite,
		s.deleteRecord(storage.CollectionEvents, permissions.FunctionEvents))

	// Session introspection is available to any authenticated caller.
	v1.HandleFunc("/session/permissions", s.getSessionPermissions).Methods(http.MethodGet)
}

// register wires a handler behind a function/action gate and records denials
// in the audit log.
func (s *Server) register(r *mux.Router, path, method string, function string, action permissions.Action, handler http.HandlerFunc) {
	gate := middleware.RequirePermission(function, action, s.metrics)
	inner := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		markHandlerRan(req)
		handler(w, req)
	})
	r.Handle(path, s.auditDenials(function, action, gate(inner))).Methods(method)
}

// Router returns the configured router for mounting under middleware.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
