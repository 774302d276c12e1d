package landmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPoints() map[Role]Point {
	points := make(map[Role]Point)
	for i, r := range Roles() {
		points[r] = Point{X: float64(i) / 20, Y: 0.5, Z: -0.01, Visibility: 0.9}
	}
	return points
}

func TestNewSet(t *testing.T) {
	t.Run("complete set", func(t *testing.T) {
		set, err := NewSet(fullPoints())
		require.NoError(t, err)
		assert.Equal(t, fullPoints()[Chin], set.Point(Chin))
	})

	t.Run("missing role", func(t *testing.T) {
		points := fullPoints()
		delete(points, LeftIris)

		set, err := NewSet(points)
		assert.Nil(t, set)
		assert.ErrorIs(t, err, ErrIncompleteSet)
		assert.Contains(t, err.Error(), "left_iris")
	})
}

func TestSet_PointPanicsOnUnknownRole(t *testing.T) {
	set, err := NewSet(fullPoints())
	require.NoError(t, err)

	assert.Panics(t, func() { set.Point(Role(99)) })
}

func TestSet_Perimeter(t *testing.T) {
	points := fullPoints()
	set, err := NewSet(points)
	require.NoError(t, err)

	perimeter := set.Perimeter()
	assert.Equal(t, points[Forehead], perimeter[0])
	assert.Equal(t, points[Chin], perimeter[1])
	assert.Equal(t, points[LeftCheekEdge], perimeter[2])
	assert.Equal(t, points[RightCheekEdge], perimeter[3])
}

func TestFromMesh(t *testing.T) {
	t.Run("maps mesh indices", func(t *testing.T) {
		mesh := make([]Point, MeshSize)
		for i := range mesh {
			mesh[i] = Point{X: float64(i) / MeshSize}
		}

		set, err := FromMesh(mesh)
		require.NoError(t, err)

		assert.Equal(t, mesh[MeshNoseTip], set.Point(NoseTip))
		assert.Equal(t, mesh[MeshLeftFaceEdge], set.Point(LeftEar))
		assert.Equal(t, mesh[MeshLeftFaceEdge], set.Point(LeftCheekEdge))
		assert.Equal(t, mesh[MeshRightFaceEdge], set.Point(RightEar))
		assert.Equal(t, mesh[MeshLeftEyeUpperLid], set.Point(LeftEyeUpperLid))
		assert.Equal(t, mesh[MeshRightEyeLowerLid], set.Point(RightEyeLowerLid))
		assert.Equal(t, mesh[MeshLeftIrisCenter], set.Point(LeftIris))
		assert.Equal(t, mesh[MeshRightIrisCenter], set.Point(RightIris))
	})

	t.Run("short mesh", func(t *testing.T) {
		_, err := FromMesh(make([]Point, 468))
		assert.ErrorIs(t, err, ErrIncompleteSet)
	})
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "nose_tip", NoseTip.String())
	assert.Equal(t, "right_iris", RightIris.String())
	assert.Equal(t, "role(42)", Role(42).String())
}
