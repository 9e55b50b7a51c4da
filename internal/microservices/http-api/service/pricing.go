package service

import "booklease/internal/microservices/http-api/models"

// RentalTiers are the only rental and extension lengths, in days.
var RentalTiers = [...]int{7, 14, 30}

func IsRentalTier(days int) bool {
	for _, t := range RentalTiers {
		if t == days {
			return true
		}
	}
	return false
}

// ResolvePrice returns the book's stored price for a tier. Other lengths are
// rejected, never rounded to a neighbouring tier.
func ResolvePrice(book *models.Book, days int) (float64, error) {
	switch days {
	case 7:
		return book.RentalPrice7Days, nil
	case 14:
		return book.RentalPrice14Days, nil
	case 30:
		return book.RentalPrice30Days, nil
	default:
		return 0, ErrInvalidDuration
	}
}
