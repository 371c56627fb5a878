package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/lineage"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
	"github.com/ALT-F4-LLC/pedigree/internal/render"
)

// loadGraph reads every individual and family into a lineage graph.
func loadGraph(conn *sql.DB) (*lineage.Graph, []*model.Family, error) {
	people, err := db.ListIndividuals(conn, db.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("listing individuals: %w", err)
	}
	families, err := db.ListFamilies(conn, db.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("listing families: %w", err)
	}
	return lineage.Build(people, families), families, nil
}

func peopleOf(g *lineage.Graph) map[int]*model.Individual {
	out := make(map[int]*model.Individual, len(g.Nodes))
	for id, n := range g.Nodes {
		out[id] = n.Individual
	}
	return out
}

type treeResult struct {
	Root        string   `json:"root"`
	Descendants []string `json:"descendants"`
	Ancestors   []string `json:"ancestors"`
}

var treeCmd = &cobra.Command{
	Use:   "tree <id>",
	Short: "Show the descendants of an individual as a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		root, err := resolveIndividual(conn, args[0])
		if err != nil {
			return err
		}
		g, _, err := loadGraph(conn)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		result := treeResult{
			Root:        root.GedcomID,
			Descendants: gedcomIDs(g, g.Descendants(root.ID)),
			Ancestors:   gedcomIDs(g, g.Ancestors(root.ID)),
		}

		var message string
		if !w.JSONMode {
			message = render.RenderDescendants(g, root.ID)
		}
		w.Success(result, message)
		return nil
	},
}

func gedcomIDs(g *lineage.Graph, ids []int) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.Nodes[id].Individual.GedcomID)
	}
	return out
}

type boardResult struct {
	Generations [][]string `json:"generations"`
}

var boardCmd = &cobra.Command{
	Use:     "board",
	Short:   "Show individuals arranged by generation",
	Aliases: []string{"generations"},
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)
		expand, _ := cmd.Flags().GetBool("expand")

		g, _, err := loadGraph(conn)
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}
		levels, err := g.Generations()
		if err != nil {
			w.Warn("%v", err)
		}

		result := boardResult{Generations: make([][]string, 0, len(levels))}
		for _, level := range levels {
			result.Generations = append(result.Generations, gedcomIDs(g, level))
		}

		var message string
		if !w.JSONMode {
			message = render.RenderGenerations(levels, peopleOf(g), render.BoardOptions{Expand: expand})
		}
		w.Success(result, message)
		return nil
	},
}

func init() {
	boardCmd.Flags().Bool("expand", false, "Show every individual instead of the first ten per generation")
	rootCmd.AddCommand(treeCmd, boardCmd)
}
