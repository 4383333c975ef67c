package flow

import (
	"sort"

	"askline/models"
)

// Graph is an in-memory view of an account's questions and routes, shared by
// the tree view, the grid layout and the user-response matrix so that cycle
// handling lives in exactly one place.
type Graph struct {
	questions  map[uint]models.Question
	order      []uint // question ids in creation order
	routesFrom map[uint][]models.QuestionRoute
	isTarget   map[uint]bool
}

// TreeNode is one question in the rendered flow tree
type TreeNode struct {
	Question models.Question `json:"question"`
	Branches []Branch        `json:"branches"`
}

// Branch is one outgoing route of a tree node. Next is nil when the target
// question is missing or the branch was truncated by the cycle guard.
type Branch struct {
	RouteID        uint      `json:"route_id"`
	NextQuestionID uint      `json:"next_question_id"`
	Label          string    `json:"label"`
	Next           *TreeNode `json:"next,omitempty"`
}

// NewGraph indexes flat question/route rows. Routes per question are ordered
// by id so every traversal is deterministic.
func NewGraph(questions []models.Question, routes []models.QuestionRoute) *Graph {
	g := &Graph{
		questions:  make(map[uint]models.Question, len(questions)),
		routesFrom: make(map[uint][]models.QuestionRoute),
		isTarget:   make(map[uint]bool),
	}
	for _, q := range questions {
		g.questions[q.ID] = q
		g.order = append(g.order, q.ID)
	}
	for _, r := range routes {
		g.routesFrom[r.FromQuestionID] = append(g.routesFrom[r.FromQuestionID], r)
		g.isTarget[r.NextQuestionID] = true
	}
	for id := range g.routesFrom {
		rs := g.routesFrom[id]
		sort.Slice(rs, func(i, j int) bool { return rs[i].ID < rs[j].ID })
	}
	return g
}

// StartQuestionIDs returns the questions that never appear as a route target,
// in creation order. A flow under construction may yield zero or several.
func (g *Graph) StartQuestionIDs() []uint {
	var starts []uint
	for _, id := range g.order {
		if !g.isTarget[id] {
			starts = append(starts, id)
		}
	}
	return starts
}

// Question looks up a question by id
func (g *Graph) Question(id uint) (models.Question, bool) {
	q, ok := g.questions[id]
	return q, ok
}

// Routes returns the outgoing routes of a question, ordered by id
func (g *Graph) Routes(fromID uint) []models.QuestionRoute {
	return g.routesFrom[fromID]
}

// BuildTree builds the reachable tree below startID by recursive descent.
// label renders the branch caption for a route (condition descriptions).
// A question already on the current path is not descended into again, so a
// cyclic flow renders as a finite tree with the repeated branch cut off.
func (g *Graph) BuildTree(startID uint, label func(models.QuestionRoute) string) *TreeNode {
	return g.buildTree(startID, label, make(map[uint]bool))
}

func (g *Graph) buildTree(id uint, label func(models.QuestionRoute) string, onPath map[uint]bool) *TreeNode {
	q, ok := g.questions[id]
	if !ok {
		return nil
	}

	node := &TreeNode{Question: q}
	onPath[id] = true
	for _, r := range g.routesFrom[id] {
		branch := Branch{
			RouteID:        r.ID,
			NextQuestionID: r.NextQuestionID,
			Label:          label(r),
		}
		if !onPath[r.NextQuestionID] {
			branch.Next = g.buildTree(r.NextQuestionID, label, onPath)
		}
		node.Branches = append(node.Branches, branch)
	}
	delete(onPath, id)
	return node
}

// Levels assigns each question a column for the grid layout: BFS distance
// from the start questions. Questions unreachable from any start are bucketed
// one past the deepest reached level so nothing vanishes from the view.
func (g *Graph) Levels() map[uint]int {
	levels := make(map[uint]int, len(g.order))
	queue := g.StartQuestionIDs()
	for _, id := range queue {
		levels[id] = 0
	}

	maxLevel := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, r := range g.routesFrom[id] {
			if _, seen := levels[r.NextQuestionID]; seen {
				continue
			}
			if _, ok := g.questions[r.NextQuestionID]; !ok {
				continue
			}
			levels[r.NextQuestionID] = levels[id] + 1
			if levels[r.NextQuestionID] > maxLevel {
				maxLevel = levels[r.NextQuestionID]
			}
			queue = append(queue, r.NextQuestionID)
		}
	}

	for _, id := range g.order {
		if _, ok := levels[id]; !ok {
			levels[id] = maxLevel + 1
		}
	}
	return levels
}

// Chain walks a single linear path from startID, following the first route of
// each question, and returns the visited question ids. The user-response
// matrix uses this as its stable column order. A visited set stops the walk
// when the flow loops back.
func (g *Graph) Chain(startID uint) []uint {
	var chain []uint
	visited := make(map[uint]bool)
	id := startID
	for {
		if visited[id] {
			break
		}
		if _, ok := g.questions[id]; !ok {
			break
		}
		visited[id] = true
		chain = append(chain, id)

		routes := g.routesFrom[id]
		if len(routes) == 0 {
			break
		}
		id = routes[0].NextQuestionID
	}
	return chain
}
