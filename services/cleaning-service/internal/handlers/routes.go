package handlers

import (
	"net/http"

	"github.com/propdesk/backoffice/libs/httpx"
)

type Routes struct {
	Schedules *ScheduleHandler
	Tenant    *TenantHandler
	// Authn resolves the principal for every route.
	Authn httpx.Middleware
	// BookingLimit throttles booking attempts. Optional.
	BookingLimit httpx.Middleware
}

func (rt Routes) Register(mux *http.ServeMux) {
	authn := rt.Authn
	if authn == nil {
		authn = func(next http.Handler) http.Handler { return next }
	}
	handle := func(pattern string, h http.HandlerFunc, extra ...httpx.Middleware) {
		mux.Handle(pattern, httpx.Chain(h, append([]httpx.Middleware{authn}, extra...)...))
	}

	const base = "/api/v1/cleaning"
	handle("POST "+base+"/schedules", rt.Schedules.Create)
	handle("GET "+base+"/schedules", rt.Schedules.List)
	handle("GET "+base+"/schedules/{id}", rt.Schedules.Get)
	handle("PUT "+base+"/schedules/{id}/days", rt.Schedules.UpdateDays)
	handle("PUT "+base+"/schedules/{id}/timetable", rt.Schedules.ReplaceTimetable)
	handle("GET "+base+"/schedules/{id}/calendar", rt.Schedules.Calendar)
	handle("GET "+base+"/schedules/{id}/slots", rt.Schedules.SlotsForDate)

	var booking []httpx.Middleware
	if rt.BookingLimit != nil {
		booking = append(booking, rt.BookingLimit)
	}
	handle("POST "+base+"/schedules/{id}/slots/{slot_id}/book", rt.Tenant.Book, booking...)
	handle("GET "+base+"/schedules/{id}/my-bookings", rt.Tenant.MyBookings)
	handle("GET "+base+"/buildings/{building_id}/months/{month}/availability", rt.Tenant.Availability)
	handle("GET "+base+"/buildings/{building_id}/months/{month}/availability/{date}", rt.Tenant.AvailabilityForDate)
}
