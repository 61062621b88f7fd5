package utils

// Unique 切片去重，保留首次出现的顺序
func Unique[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// Map 映射切片
func Map[T, U any](slice []T, fn func(T) U) []U {
	result := make([]U, len(slice))
	for i, v := range slice {
		result[i] = fn(v)
	}
	return result
}

// Ptr 返回值的指针
func Ptr[T any](v T) *T {
	return &v
}

// Val 返回指针的值,如果为nil返回零值
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
