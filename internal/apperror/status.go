package apperror

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

func GRPCCode(err error) codes.Code {
	switch Code(err) {
	case "":
		return codes.OK
	case "ProductNotFound", "LocationNotFound", "CustomerNotFound", "OrderNotFound":
		return codes.NotFound
	case "InsufficientStock", "InvalidAdjustment", "AlreadyCancelled", "InvalidTransition", "OrderCancelled":
		return codes.FailedPrecondition
	case "InvalidInput":
		return codes.InvalidArgument
	case "TransientConflict":
		return codes.Aborted
	case "DuplicateRequest":
		return codes.AlreadyExists
	case "MissingTenant":
		return codes.Unauthenticated
	}
	return codes.Internal
}

func HTTPStatus(err error) int {
	switch GRPCCode(err) {
	case codes.OK:
		return http.StatusOK
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
