package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-balance-service/internal/app/account/domain"
	"github.com/JoeShih716/go-balance-service/internal/app/account/usecase"
)

// Server 對外的 JSON API，核心邏輯都在 usecase.TransactionService
type Server struct {
	app     *fiber.App
	service *usecase.TransactionService
	logger  *zap.Logger
}

// UseBalanceRequest 扣款請求
type UseBalanceRequest struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

// CancelBalanceRequest 取消扣款請求
type CancelBalanceRequest struct {
	TransactionID string `json:"transaction_id"`
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

// TransactionResponse 交易結果回應
type TransactionResponse struct {
	AccountNumber     string    `json:"account_number"`
	TransactionType   string    `json:"transaction_type"`
	TransactionResult string    `json:"transaction_result"`
	TransactionID     string    `json:"transaction_id"`
	Amount            int64     `json:"amount"`
	BalanceSnapshot   int64     `json:"balance_snapshot"`
	TransactedAt      time.Time `json:"transacted_at"`
}

// NewServer 建立 API Server 並註冊路由
func NewServer(service *usecase.TransactionService, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s := &Server{
		app:     app,
		service: service,
		logger:  logger,
	}

	app.Post("/transaction/use", s.useBalance)
	app.Post("/transaction/cancel", s.cancelBalance)
	app.Get("/transaction/:transactionId", s.queryTransaction)

	return s
}

// App 回傳底層的 fiber App，供測試使用
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen 開始監聽
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown 停止接受新請求並等待進行中的請求結束
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// useBalance 扣款 API
// 帳戶已定位但驗證失敗時，先補寫失敗稽核紀錄再回應錯誤
func (s *Server) useBalance(c *fiber.Ctx) error {
	var req UseBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error_code": "INVALID_REQUEST",
			"message":    "invalid body",
		})
	}

	result, err := s.service.UseBalance(c.Context(), req.UserID, req.AccountNumber, req.Amount)
	if err != nil {
		if isUseValidationFailure(err) {
			if saveErr := s.service.SaveFailedUseTransaction(c.Context(), req.AccountNumber, req.Amount); saveErr != nil {
				s.logger.Error("save failed use transaction",
					zap.String("account_number", req.AccountNumber),
					zap.Error(saveErr))
			}
		}
		return s.respondError(c, err)
	}

	return c.JSON(toResponse(result))
}

// cancelBalance 取消扣款 API
func (s *Server) cancelBalance(c *fiber.Ctx) error {
	var req CancelBalanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error_code": "INVALID_REQUEST",
			"message":    "invalid body",
		})
	}

	result, err := s.service.CancelBalance(c.Context(), req.TransactionID, req.AccountNumber, req.Amount)
	if err != nil {
		if isCancelValidationFailure(err) {
			if saveErr := s.service.SaveFailedCancelTransaction(c.Context(), req.AccountNumber, req.Amount); saveErr != nil {
				s.logger.Error("save failed cancel transaction",
					zap.String("account_number", req.AccountNumber),
					zap.Error(saveErr))
			}
		}
		return s.respondError(c, err)
	}

	return c.JSON(toResponse(result))
}

// queryTransaction 交易查詢 API
func (s *Server) queryTransaction(c *fiber.Ctx) error {
	result, err := s.service.QueryTransaction(c.Context(), c.Params("transactionId"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(toResponse(result))
}

// isUseValidationFailure 扣款流程中「帳戶已定位、餘額未改動」階段的失敗
// 這些失敗由呼叫端補寫稽核紀錄；更早的失敗（查無使用者/帳戶）不留紀錄
func isUseValidationFailure(err error) bool {
	return errors.Is(err, domain.ErrUserAccountUnMatch) ||
		errors.Is(err, domain.ErrAccountAlreadyUnregistered) ||
		errors.Is(err, domain.ErrAmountExceedBalance)
}

// isCancelValidationFailure 取消流程中對應的驗證階段失敗
func isCancelValidationFailure(err error) bool {
	return errors.Is(err, domain.ErrTransactionAccountUnMatch) ||
		errors.Is(err, domain.ErrCancelMustFully) ||
		errors.Is(err, domain.ErrTooOldOrderToCancel)
}

// respondError 將業務錯誤轉成 HTTP 狀態碼與穩定錯誤代碼
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	code := domain.ErrorCode(err)
	status := fiber.StatusUnprocessableEntity
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		status = fiber.StatusNotFound
	case code == "INTERNAL_ERROR":
		status = fiber.StatusInternalServerError
		s.logger.Error("transaction request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{
		"error_code": code,
		"message":    err.Error(),
	})
}

func toResponse(result *usecase.TransactionResult) TransactionResponse {
	return TransactionResponse{
		AccountNumber:     result.AccountNumber,
		TransactionType:   result.TransactionType.String(),
		TransactionResult: result.Result.String(),
		TransactionID:     result.TransactionID,
		Amount:            result.Amount,
		BalanceSnapshot:   result.BalanceSnapshot,
		TransactedAt:      result.TransactedAt,
	}
}
