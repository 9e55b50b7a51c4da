package cache

import "fmt"

const (
	CategoriesKey = "books:categories"
	PopularPrefix = "books:popular:"
)

func PopularKey(limit int) string {
	return fmt.Sprintf("%s%d", PopularPrefix, limit)
}
