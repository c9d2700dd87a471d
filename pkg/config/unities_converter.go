package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	onlyBytesRex    = regexp.MustCompile("^[0-9]+$")
	sizeWithUnitRex = regexp.MustCompile("^([0-9]+)(kb|mb|gb|tb|pb|KB|MB|GB|TB|PB)$")
)

// ToBytes converts sizes like "512", "45kb" or "1GB" into bytes. Units are binary (1kb = 1024).
func ToBytes(sizeRep string) (int64, error) {
	if sizeRep == "" {
		return 0, nil
	}

	if onlyBytesRex.MatchString(sizeRep) {
		inBytes, err := strconv.ParseInt(sizeRep, 10, 64)
		if err != nil {
			return 0, err
		}

		return inBytes, nil
	}

	matches := sizeWithUnitRex.FindStringSubmatch(sizeRep)
	noUnitFound := len(matches) != 3
	if noUnitFound {
		return 0, fmt.Errorf("invalid data size unit: %s", sizeRep)
	}

	size, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, err
	}

	exponential := 0
	switch strings.ToLower(matches[2]) {
	case "kb":
		exponential = 1
	case "mb":
		exponential = 2
	case "gb":
		exponential = 3
	case "tb":
		exponential = 4
	case "pb":
		exponential = 5
	}

	//Doing exponentiation with integers (instead of float64) to allow bigger numbers
	sizeInBytes := size
	for i := 0; i < exponential; i++ {
		sizeInBytes *= 1024
	}
	return sizeInBytes, nil
}
