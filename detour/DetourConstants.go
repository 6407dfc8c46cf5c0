package detour

const (
	FLOAT_MAX_VALUE    float32 = 3.4028235E38
	MESH_NULL_IDX      int     = 0xffff
	DT_NAVMESH_MAGIC   int     = 'D'<<24 | 'N'<<16 | 'A'<<8 | 'V' /** A magic number used to detect compatibility of navigation tile data. */
	DT_NAVMESH_VERSION int     = 7                                /** A version number used to detect compatibility of navigation tile data.*/
	DT_POLYTYPE_GROUND int     = 0                                /** The polygon is a standard convex polygon that is part of the surface of the mesh. */
	DT_EXT_LINK        int     = 0x8000
	DT_NULL_LINK       int     = -1
	DT_MAX_AREAS       int     = 64 /// The maximum number of user defined area ids.
	DT_VERTS_PER_POLYGON int   = 6  /// The maximum number of vertices per navigation polygon.
	DT_SALT_BITS       uint8   = 16
	DT_POLY_BITS       uint8   = 20
	DT_TILE_BITS       uint8   = 28
	DT_BV_MAX_QUANT    int     = 0x7fffffff /// Upper clamp of quantized BV-tree coordinates.
	EPS                float32 = 1.0E-4

	DT_NODE_OPEN                   int     = 0x01
	DT_NODE_CLOSED                 int     = 0x02
	FAILURE                        int     = 0
	SUCCSESS                       int     = 1
	IN_PROGRESS                    int     = 2
	PARTIAL_RESULT                 int     = 3
	H_SCALE                        float32 = 0.999 // Search heuristic scale.
	DT_STRAIGHTPATH_START          int     = 0x01  /** The vertex is the start position in the path. */
	DT_STRAIGHTPATH_END            int     = 0x02  /** The vertex is the end position in the path. */
	DT_STRAIGHTPATH_AREA_CROSSINGS int     = 0x01  ///< Add a vertex at every polygon edge crossing where area changes.
	DT_STRAIGHTPATH_ALL_CROSSINGS  int     = 0x02  ///< Add a vertex at every polygon edge crossing.
)
