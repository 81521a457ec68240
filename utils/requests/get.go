package requests

import (
	"fmt"
)

func Get(url string) ([]byte, error) {
	response, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error during GET request to %s:\n  %v", url, err)
	}

	return ReadResponseBody(response, url)
}
