package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"askline/models"
)

func question(id uint, title string) models.Question {
	return models.Question{Model: gorm.Model{ID: id}, Title: title, Type: models.QuestionTypeButton}
}

func noLabel(models.QuestionRoute) string { return "" }

func TestStartQuestionIDs(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "Q1"), question(2, "Q2"), question(3, "Q3")},
		[]models.QuestionRoute{route(1, 1, 2, "")},
	)

	// Q1 and Q3 are never a route target
	assert.Equal(t, []uint{1, 3}, g.StartQuestionIDs())
}

func TestStartQuestionIDsAllTargeted(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "Q1"), question(2, "Q2")},
		[]models.QuestionRoute{route(1, 1, 2, ""), route(2, 2, 1, "")},
	)
	assert.Empty(t, g.StartQuestionIDs())
}

func TestBuildTreeTerminatesOnCycle(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "A"), question(2, "B")},
		[]models.QuestionRoute{route(1, 1, 2, ""), route(2, 2, 1, "")},
	)

	tree := g.BuildTree(1, noLabel)
	require.NotNil(t, tree)
	require.Len(t, tree.Branches, 1)

	b := tree.Branches[0].Next
	require.NotNil(t, b)
	assert.Equal(t, uint(2), b.Question.ID)

	// the B→A branch exists but is truncated, A is already on the path
	require.Len(t, b.Branches, 1)
	assert.Equal(t, uint(1), b.Branches[0].NextQuestionID)
	assert.Nil(t, b.Branches[0].Next)
}

func TestBuildTreeDiamondRevisitsOffPath(t *testing.T) {
	// A→B→D and A→C→D: D is rendered under both arms because it is only
	// guarded against while on the current path
	g := NewGraph(
		[]models.Question{question(1, "A"), question(2, "B"), question(3, "C"), question(4, "D")},
		[]models.QuestionRoute{
			route(1, 1, 2, "g1"),
			route(2, 1, 3, ""),
			route(3, 2, 4, ""),
			route(4, 3, 4, ""),
		},
	)

	tree := g.BuildTree(1, noLabel)
	require.Len(t, tree.Branches, 2)
	require.NotNil(t, tree.Branches[0].Next.Branches[0].Next)
	require.NotNil(t, tree.Branches[1].Next.Branches[0].Next)
	assert.Equal(t, uint(4), tree.Branches[0].Next.Branches[0].Next.Question.ID)
	assert.Equal(t, uint(4), tree.Branches[1].Next.Branches[0].Next.Question.ID)
}

func TestBuildTreeMissingTarget(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "A")},
		[]models.QuestionRoute{route(1, 1, 99, "")},
	)

	tree := g.BuildTree(1, noLabel)
	require.Len(t, tree.Branches, 1)
	assert.Nil(t, tree.Branches[0].Next)
}

func TestLevels(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "A"), question(2, "B"), question(3, "C"), question(4, "orphan")},
		[]models.QuestionRoute{route(1, 1, 2, ""), route(2, 2, 3, "")},
	)

	levels := g.Levels()
	assert.Equal(t, 0, levels[1])
	assert.Equal(t, 1, levels[2])
	assert.Equal(t, 2, levels[3])

	// question 4 is itself a start (never targeted), so it sits at level 0
	assert.Equal(t, 0, levels[4])
}

func TestLevelsUnreachableBucket(t *testing.T) {
	// 4 and 5 form a detached cycle: neither is a start, neither is reachable
	g := NewGraph(
		[]models.Question{question(1, "A"), question(2, "B"), question(4, "X"), question(5, "Y")},
		[]models.QuestionRoute{
			route(1, 1, 2, ""),
			route(2, 4, 5, ""),
			route(3, 5, 4, ""),
		},
	)

	levels := g.Levels()
	assert.Equal(t, 0, levels[1])
	assert.Equal(t, 1, levels[2])
	assert.Equal(t, 2, levels[4])
	assert.Equal(t, 2, levels[5])
}

func TestLevelsCycleTerminates(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "A"), question(2, "B"), question(3, "C")},
		[]models.QuestionRoute{
			route(1, 1, 2, ""),
			route(2, 2, 3, ""),
			route(3, 3, 2, ""), // C loops back to B
		},
	)

	levels := g.Levels()
	assert.Equal(t, 0, levels[1])
	assert.Equal(t, 1, levels[2])
	assert.Equal(t, 2, levels[3])
}

func TestChainFollowsFirstRoute(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "A"), question(2, "B"), question(3, "C")},
		[]models.QuestionRoute{
			route(2, 1, 3, "g1"), // created later
			route(1, 1, 2, ""),   // first route wins the chain
			route(3, 2, 3, ""),
		},
	)

	assert.Equal(t, []uint{1, 2, 3}, g.Chain(1))
}

func TestChainStopsOnCycle(t *testing.T) {
	g := NewGraph(
		[]models.Question{question(1, "A"), question(2, "B")},
		[]models.QuestionRoute{route(1, 1, 2, ""), route(2, 2, 1, "")},
	)

	assert.Equal(t, []uint{1, 2}, g.Chain(1))
}
