package pathfinder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// MirrorOptions bound the image-source tree.
type MirrorOptions struct {
	Order      int  // maximum reflection order
	MaxSrcDist Real // image to source distance, also the cone extent
	MaxRefDist Real // image to receiver distance
}

// MirrorReceiver is a node of the image-source tree: the receiver mirrored
// across WallID, itself mirrored across the walls of its ancestors.
type MirrorReceiver struct {
	Pos    orb.Point
	Parent int // arena index, -1 for the root
	WallID int // scene wall id, -1 for the root
	Order  int
	Cone   VisibilityCone // where the next point towards the source must lie
	wall   int            // index in the candidate walls
}

// MirrorArena owns the node storage of successive mirror trees.
// A worker keeps one arena and releases each tree before building the next.
type MirrorArena struct {
	nodes  []MirrorReceiver
	leaves []coneLeaf
}

// MirrorIndex is the image-source tree of one receiver. It is not safe for
// concurrent use and is only valid until Release.
type MirrorIndex struct {
	Receiver orb.Point
	opts     MirrorOptions
	walls    []Wall
	nodes    []MirrorReceiver
	bvh      *coneBVH
	arena    *MirrorArena
}

// NewMirrorIndex builds a tree in a fresh arena.
func NewMirrorIndex(ctx context.Context, walls []Wall, receiver orb.Point, opts MirrorOptions) (*MirrorIndex, error) {
	return new(MirrorArena).Build(ctx, walls, receiver, opts)
}

// Build expands the tree breadth first, one reflection order per level.
// A child is kept when its wall differs from the parent's, faces the parent
// image, keeps a non degenerate part inside the parent cone and mirrors to
// within MaxRefDist of the receiver. ctx is polled between levels and every
// MirrorCancelCheckEvery expansions.
func (a *MirrorArena) Build(ctx context.Context, walls []Wall, receiver orb.Point, opts MirrorOptions) (*MirrorIndex, error) {
	nodes := append(a.nodes[:0], MirrorReceiver{Pos: receiver, Parent: -1, WallID: -1, wall: -1})
	frontier := []int{0}
	expansions := 0
	for order := 1; order <= opts.Order && len(frontier) > 0; order++ {
		if err := ctx.Err(); err != nil {
			a.nodes = nodes[:0]
			return nil, err
		}
		var next []int
		for _, pi := range frontier {
			for wi := range walls {
				expansions++
				if expansions%MirrorCancelCheckEvery == 0 {
					if err := ctx.Err(); err != nil {
						a.nodes = nodes[:0]
						return nil, err
					}
				}
				if wi == nodes[pi].wall {
					continue
				}
				w := &walls[wi]
				parentPos := nodes[pi].Pos
				if !w.Reflects(parentPos) {
					continue
				}
				c0, c1 := w.P0, w.P1
				if pi != 0 {
					var ok bool
					if c0, c1, ok = nodes[pi].Cone.Clip(w.P0, w.P1); !ok {
						continue
					}
				}
				img, ok := mirrorAcross(parentPos, w.P0, w.P1)
				if !ok || vdist(img, receiver) > opts.MaxRefDist {
					continue
				}
				cone := NewVisibilityCone(img, c0, c1, opts.MaxSrcDist)
				if !cone.Valid() {
					continue
				}
				nodes = append(nodes, MirrorReceiver{
					Pos:    img,
					Parent: pi,
					WallID: w.ID,
					Order:  order,
					Cone:   cone,
					wall:   wi,
				})
				next = append(next, len(nodes)-1)
			}
		}
		frontier = next
	}
	a.nodes = nodes

	leaves := a.leaves[:0]
	for i := 1; i < len(nodes); i++ {
		b := nodes[i].Cone.Bound()
		leaves = append(leaves, coneLeaf{min: b.Min, max: b.Max, node: i})
	}
	a.leaves = leaves
	DebugLog("Mirror tree for receiver %v: %d walls, %d images", receiver, len(walls), len(nodes)-1)
	return &MirrorIndex{
		Receiver: receiver,
		opts:     opts,
		walls:    walls,
		nodes:    nodes,
		bvh:      buildConeBVH(leaves),
		arena:    a,
	}, nil
}

// Len is the number of images, the root excluded.
func (m *MirrorIndex) Len() int { return len(m.nodes) - 1 }

// Nodes exposes the arena, the root being at index 0.
func (m *MirrorIndex) Nodes() []MirrorReceiver { return m.nodes }

// Chain lists the arena indices from node i up to, not including, the root.
// The first entry is the image used by the reflection closest to the source.
func (m *MirrorIndex) Chain(i int) []int {
	var out []int
	for ; i > 0; i = m.nodes[i].Parent {
		out = append(out, i)
	}
	return out
}

// closeNodes returns the images within MaxSrcDist of src whose cone contains it.
func (m *MirrorIndex) closeNodes(src orb.Point) []int {
	cand := m.bvh.candidates(src, nil)
	sort.Ints(cand)
	out := cand[:0]
	for _, i := range cand {
		n := &m.nodes[i]
		if vdist(src, n.Pos) <= m.opts.MaxSrcDist && n.Cone.Contains(src) {
			out = append(out, i)
		}
	}
	return out
}

// FindCloseMirrorReceivers returns the candidate reflection sequences for a
// source, as wall ids ordered from the source to the receiver.
func (m *MirrorIndex) FindCloseMirrorReceivers(src orb.Point) [][]int {
	var out [][]int
	for _, i := range m.closeNodes(src) {
		chain := m.Chain(i)
		seq := make([]int, len(chain))
		for k, ni := range chain {
			seq[k] = m.nodes[ni].WallID
		}
		out = append(out, seq)
	}
	return out
}

// VisibilityFeatures renders every image cone as a polygon feature, for
// inspecting why a reflection was or was not found.
func (m *MirrorIndex) VisibilityFeatures() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := 1; i < len(m.nodes); i++ {
		n := &m.nodes[i]
		f := geojson.NewFeature(n.Cone.Polygon())
		f.Properties["node"] = i
		f.Properties["parent"] = n.Parent
		f.Properties["wall"] = n.WallID
		f.Properties["order"] = n.Order
		f.Properties["image"] = []Real{n.Pos[0], n.Pos[1]}
		fc.Append(f)
	}
	return fc
}

// ExportVisibility writes VisibilityFeatures as GeoJSON.
func (m *MirrorIndex) ExportVisibility(w io.Writer) error {
	data, err := json.MarshalIndent(m.VisibilityFeatures(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cones: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write cones: %w", err)
	}
	return nil
}

// Release hands the node storage back to the arena.
func (m *MirrorIndex) Release() {
	if m.arena != nil {
		m.arena.nodes = m.arena.nodes[:0]
		m.arena.leaves = m.arena.leaves[:0]
	}
	m.nodes = nil
	m.bvh = nil
}

func (m *MirrorIndex) wall(ni int) *Wall { return &m.walls[m.nodes[ni].wall] }
