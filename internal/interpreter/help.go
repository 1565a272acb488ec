package interpreter

const welcome = "Welcome to ASCII Art Studio! If you need help to see all valid commands, type 'help'. To exit, type 'quit'"

// MissingCurrentMessage is shown when a restored session names a current
// image that none of its members matches.
const MissingCurrentMessage = "Could not find the specified current image."

const noImages = "No images loaded. Use 'load image <filename>' to load an image or 'load session <filename>' to load a session"

const helpText = `Valid commands are

load image <filename>
    Load the image in filename and add it to the session under its filename.
    The most recently loaded image becomes the current image. Include the
    extension, e.g. photo.jpg. An http(s) URL loads a remote image.

load image <filename> as <alias>
    Same as above, but the image can also be referred to as alias.

info
    List the loaded images with their attributes and show the current image.

render
    Draw the current image as ASCII art. Images are loaded at a width of 50
    characters with the height set to half the image's aspect ratio, since
    letters are about twice as tall as they are wide.

render <img>
    Like render, but for img, which may be a filename, an alias or current.

render <img> to <filename>
    Same as above, but write the result to filename (.txt is added when
    filename has no extension).

set <img> width <num>
    Set the width of img to num characters. The height follows from the
    aspect ratio as described for render.

set <img> height <num>
    Same as above, but for the height.

set <img> brightness <num>
    Brightness relative to the original image: 1.1 is 10% brighter and 0.8
    is 20% darker.

set <img> contrast <num>
    Same as above, but for contrast.

save session as <filename>
    Save every loaded image's filename, alias, size, brightness and contrast
    together with the current image. Pixel data is not saved. A filename
    without extension gets .json; .yaml and .parquet are also understood.

load session <filename>
    Replace the session with the one saved in filename. Every image is loaded
    again from its file and the saved parameters are applied.

quit
    Exit the studio.
`
