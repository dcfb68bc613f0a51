package reimbursement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendComment(t *testing.T) {
	r := &Reimbursement{}

	r.AppendComment("")
	assert.Nil(t, r.Comments)

	r.AppendComment("A")
	require.NotNil(t, r.Comments)
	assert.Equal(t, "A", *r.Comments)

	r.AppendComment("B")
	assert.Equal(t, "A\nB", *r.Comments)
}
