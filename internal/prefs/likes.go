package prefs

import "slices"

// MaxLikedProducts bounds the liked list so the signed cookie stays under the
// 4096-byte limit securecookie enforces. The oldest likes are dropped first.
const MaxLikedProducts = 60

var LikedProducts = Key[[]string]{Name: "likedProducts"}

// Liked returns the liked product ids, oldest first. A corrupt value is
// treated as an empty list.
func Liked(v Values) []string {
	ids, ok, err := LikedProducts.Get(v)
	if err != nil || !ok || ids == nil {
		return []string{}
	}
	return ids
}

func IsLiked(v Values, id string) bool {
	return slices.Contains(Liked(v), id)
}

// ToggleLike adds id to the liked list or removes it when already present,
// and reports whether the product is liked afterwards.
func ToggleLike(v Values, id string) (bool, error) {
	ids := Liked(v)

	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
		if len(ids) == 0 {
			LikedProducts.Remove(v)
			return false, nil
		}
		return false, LikedProducts.Set(v, ids)
	}

	ids = append(ids, id)
	if len(ids) > MaxLikedProducts {
		ids = ids[len(ids)-MaxLikedProducts:]
	}
	return true, LikedProducts.Set(v, ids)
}
