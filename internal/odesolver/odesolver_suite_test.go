package odesolver_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOdesolver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "odesolver")
}
