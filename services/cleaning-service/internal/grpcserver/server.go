// Package grpcserver exposes booking to other backoffice services over gRPC. Messages are plain
// structs carried by the JSON codec, so the service descriptor is written by hand.
package grpcserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/propdesk/backoffice/services/cleaning-service/internal/calendar"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/cleaning"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "cleaning.v1.CleaningService"

const (
	BookSlotMethod      = "/" + ServiceName + "/BookSlot"
	ListOpenSlotsMethod = "/" + ServiceName + "/ListOpenSlots"
)

type BookSlotRequest struct {
	ScheduleID string `json:"schedule_id"`
	SlotID     string `json:"slot_id"`
	BookerID   string `json:"booker_id"`
}

type BookSlotResponse struct {
	Slot model.Slot `json:"slot"`
}

type ListOpenSlotsRequest struct {
	ScheduleID string `json:"schedule_id"`
	Date       string `json:"date"`
}

type ListOpenSlotsResponse struct {
	ScheduleID string       `json:"schedule_id"`
	Date       string       `json:"date"`
	Slots      []model.Slot `json:"slots"`
}

// CleaningServer is the server API for the cleaning service.
type CleaningServer interface {
	BookSlot(context.Context, *BookSlotRequest) (*BookSlotResponse, error)
	ListOpenSlots(context.Context, *ListOpenSlotsRequest) (*ListOpenSlotsResponse, error)
}

type Server struct {
	svc    *cleaning.Service
	logger *slog.Logger
}

func New(svc *cleaning.Service, logger *slog.Logger) *Server {
	return &Server{svc: svc, logger: logger}
}

func (s *Server) BookSlot(ctx context.Context, req *BookSlotRequest) (*BookSlotResponse, error) {
	if req.ScheduleID == "" || req.SlotID == "" {
		return nil, status.Error(codes.InvalidArgument, "schedule_id and slot_id are required")
	}
	slot, err := s.svc.BookSlot(ctx, req.ScheduleID, req.SlotID, req.BookerID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &BookSlotResponse{Slot: slot}, nil
}

func (s *Server) ListOpenSlots(ctx context.Context, req *ListOpenSlotsRequest) (*ListOpenSlotsResponse, error) {
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.svc.OpenSlotsForDate(ctx, req.ScheduleID, date)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ListOpenSlotsResponse{ScheduleID: res.ScheduleID, Date: res.Date.String(), Slots: res.Slots}, nil
}

func (s *Server) toStatus(ctx context.Context, err error) error {
	var e *model.Error
	if !errors.As(err, &e) {
		s.logger.ErrorContext(ctx, "grpc call failed", "err", err)
		return status.Error(codes.Internal, "internal error")
	}
	switch e.Kind {
	case model.KindValidation:
		return status.Error(codes.InvalidArgument, e.Error())
	case model.KindNotFound:
		return status.Error(codes.NotFound, e.Error())
	case model.KindConflict:
		return status.Error(codes.AlreadyExists, e.Error())
	case model.KindAlreadyBooked:
		return status.Error(codes.Aborted, e.Error())
	case model.KindExpiredSlot, model.KindDaysWithBookings:
		return status.Error(codes.FailedPrecondition, e.Error())
	default:
		return status.Error(codes.Internal, e.Error())
	}
}

func Register(r grpc.ServiceRegistrar, srv CleaningServer) {
	r.RegisterService(&ServiceDesc, srv)
}

func bookSlotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BookSlotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CleaningServer).BookSlot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: BookSlotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CleaningServer).BookSlot(ctx, req.(*BookSlotRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listOpenSlotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListOpenSlotsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CleaningServer).ListOpenSlots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListOpenSlotsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CleaningServer).ListOpenSlots(ctx, req.(*ListOpenSlotsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CleaningServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "BookSlot", Handler: bookSlotHandler},
		{MethodName: "ListOpenSlots", Handler: listOpenSlotsHandler},
	},
	Streams: []grpc.StreamDesc{},
}
