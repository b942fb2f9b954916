package httpapi

import errors "github.com/Laisky/errors/v2"

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
