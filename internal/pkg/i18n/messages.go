package i18n

import "github.com/nicksnyder/go-i18n/v2/i18n"

var english = []*i18n.Message{
	{ID: "ProductNotFound", Other: "Product not found"},
	{ID: "LocationNotFound", Other: "Location not found"},
	{ID: "CustomerNotFound", Other: "Customer not found"},
	{ID: "OrderNotFound", Other: "Order not found"},
	{ID: "InsufficientStock", Other: "Insufficient stock for product {{.ProductID}}: {{.Available}} available"},
	{ID: "InvalidAdjustment", Other: "Adjustment would make stock negative"},
	{ID: "AlreadyCancelled", Other: "Order is already cancelled"},
	{ID: "InvalidTransition", Other: "Order cannot move to the requested status"},
	{ID: "InvalidInput", Other: "Invalid request"},
	{ID: "TransientConflict", Other: "The system is busy, please try again"},
	{ID: "DuplicateRequest", Other: "This request is already being processed"},
	{ID: "OrderCancelled", Other: "Order is cancelled"},
	{ID: "MissingTenant", Other: "Tenant is required"},
	{ID: "Internal", Other: "Internal server error"},
}

var indonesian = []*i18n.Message{
	{ID: "ProductNotFound", Other: "Produk tidak ditemukan"},
	{ID: "LocationNotFound", Other: "Lokasi tidak ditemukan"},
	{ID: "CustomerNotFound", Other: "Pelanggan tidak ditemukan"},
	{ID: "OrderNotFound", Other: "Pesanan tidak ditemukan"},
	{ID: "InsufficientStock", Other: "Stok produk {{.ProductID}} tidak cukup: tersedia {{.Available}}"},
	{ID: "InvalidAdjustment", Other: "Penyesuaian akan membuat stok negatif"},
	{ID: "AlreadyCancelled", Other: "Pesanan sudah dibatalkan"},
	{ID: "InvalidTransition", Other: "Status pesanan tidak dapat diubah ke status tersebut"},
	{ID: "InvalidInput", Other: "Permintaan tidak valid"},
	{ID: "TransientConflict", Other: "Sistem sedang sibuk, silakan coba lagi"},
	{ID: "DuplicateRequest", Other: "Permintaan ini sedang diproses"},
	{ID: "OrderCancelled", Other: "Pesanan telah dibatalkan"},
	{ID: "MissingTenant", Other: "Tenant wajib diisi"},
	{ID: "Internal", Other: "Terjadi kesalahan pada server"},
}
