// Package features detects keypoints, computes descriptors and matches
// descriptor sets between two images.
//
// # Detectors
//
// Harris, Shi-Tomasi and FAST are implemented in pure Go on top of gonum
// matrices. BRISK, ORB, AKAZE and SIFT are delegated to OpenCV through gocv
// and are only available in binaries built with the opencv tag; otherwise
// their constructors return ErrBackendUnavailable.
//
// Harris corners go through overlap-based non-maximum suppression: a
// candidate that overlaps an accepted keypoint by more than MaxOverlap
// either replaces it (when stronger) or is discarded. Two policies decide
// which incumbent a stronger candidate displaces, see SuppressionPolicy.
//
// # Descriptors
//
// Descriptors are either binary (packed bits, compared by Hamming distance)
// or float (gonum rows, compared by Euclidean distance). BRIEF is pure Go;
// the other descriptors need the OpenCV backend. FREAK is recognised by name
// but has no implementation.
//
// # Matching
//
// A Matcher combines a search strategy (brute force or a kd-tree
// approximate search) with a selection rule (nearest neighbour, or two
// nearest neighbours plus a distance ratio test). Binary descriptors are
// converted to float before approximate search.
//
// # Coordinate System
//
// Keypoint coordinates follow the image package: X grows rightward, Y grows
// downward and (0,0) is the top-left pixel.
package features
