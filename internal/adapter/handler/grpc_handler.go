package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const cartServiceName = "storefront.v1.Cart"

// CartServer is the gRPC surface of the cart. Requests and responses are
// google.protobuf.Struct messages:
//
//	AddItem     {product_id}
//	RemoveItem  {product_id}
//	Clear       {confirm}
//	Checkout    {confirm}
//	GetCart     {}
//
// Every response carries success, message, items, item_count and total.
type CartServer interface {
	AddItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Clear(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Checkout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCart(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: cartServiceName,
	HandlerType: (*CartServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddItem", Handler: unary("AddItem", CartServer.AddItem)},
		{MethodName: "RemoveItem", Handler: unary("RemoveItem", CartServer.RemoveItem)},
		{MethodName: "Clear", Handler: unary("Clear", CartServer.Clear)},
		{MethodName: "Checkout", Handler: unary("Checkout", CartServer.Checkout)},
		{MethodName: "GetCart", Handler: unary("GetCart", CartServer.GetCart)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "storefront/v1/cart.proto",
}

func RegisterCartServer(s grpc.ServiceRegistrar, srv CartServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

// FullMethod returns the invoke path of a cart method, for clients.
func FullMethod(method string) string {
	return "/" + cartServiceName + "/" + method
}

func unary(method string, call func(CartServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CartServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type GRPCHandler struct {
	cartService *service.CartService
	logger      *zap.Logger
}

var _ CartServer = (*GRPCHandler)(nil)

func NewGRPCHandler(cartService *service.CartService, logger *zap.Logger) *GRPCHandler {
	return &GRPCHandler{cartService: cartService, logger: logger}
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID := stringField(req, "product_id")
	if productID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}

	product, err := h.cartService.Ledger().Product(productID)
	if err != nil {
		return h.respond(false, "unknown product", "")
	}

	if err := h.cartService.AddItem(ctx, product.ID, product.Name, product.Price); err != nil {
		return h.fail(err)
	}
	return h.respond(true, "item added", "")
}

func (h *GRPCHandler) RemoveItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID := stringField(req, "product_id")
	if productID == "" {
		return nil, status.Error(codes.InvalidArgument, "product_id is required")
	}

	if err := h.cartService.RemoveItem(ctx, productID); err != nil {
		return h.fail(err)
	}
	return h.respond(true, "item removed", "")
}

func (h *GRPCHandler) Clear(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := h.cartService.Clear(ctx, Answer(boolField(req, "confirm"))); err != nil {
		return h.fail(err)
	}
	return h.respond(true, "cart cleared", "")
}

func (h *GRPCHandler) Checkout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	order, err := h.cartService.Checkout(ctx, Answer(boolField(req, "confirm")))
	if err != nil {
		return h.fail(err)
	}
	if order == nil {
		return h.respond(true, "cart is empty", "")
	}
	return h.respond(true, "purchase completed", order.ID)
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return h.respond(true, "ok", "")
}

// fail turns business errors into unsuccessful responses and everything
// else into a gRPC status.
func (h *GRPCHandler) fail(err error) (*structpb.Struct, error) {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		return h.respond(false, "sold out", "")
	case errors.Is(err, domain.ErrUnknownProduct):
		return h.respond(false, "unknown product", "")
	case errors.Is(err, domain.ErrDeclined):
		return h.respond(false, "confirmation required", "")
	case errors.Is(err, service.ErrServiceClosed):
		return nil, status.Error(codes.Unavailable, "shutting down")
	}

	h.logger.Error("grpc request failed", zap.Error(err))
	return nil, status.Error(codes.Internal, "internal error")
}

func (h *GRPCHandler) respond(success bool, message, orderID string) (*structpb.Struct, error) {
	items := h.cartService.Items()
	totals := domain.ComputeTotals(items)

	lines := make([]interface{}, 0, len(items))
	for _, it := range items {
		lines = append(lines, map[string]interface{}{
			"id":       it.ProductID,
			"name":     it.Name,
			"price":    it.UnitPrice.StringFixed(2),
			"quantity": it.Quantity,
			"subtotal": it.Subtotal.StringFixed(2),
		})
	}

	fields := map[string]interface{}{
		"success":    success,
		"message":    message,
		"items":      lines,
		"item_count": totals.ItemCount,
		"total":      totals.GrandTotal.StringFixed(2),
	}
	if orderID != "" {
		fields["order_id"] = orderID
	}

	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return resp, nil
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func boolField(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}
